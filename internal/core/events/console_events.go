package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventJourneyPublished     = "journey.published"
	EventVersionPromoted      = "journey.version_promoted"
	EventRegistrationCreated  = "registration.created"
	EventDefaultMethodChanged = "paymentmethod.default_changed"
	EventGatewayStatusChanged = "gateway.status_changed"
)

func NewJourneyPublishedEvent(journeyID, versionID string) BaseEvent {
	return newEvent(EventJourneyPublished, map[string]interface{}{
		"journey_id": journeyID,
		"version_id": versionID,
	})
}

func NewVersionPromotedEvent(journeyID, versionID string) BaseEvent {
	return newEvent(EventVersionPromoted, map[string]interface{}{
		"journey_id": journeyID,
		"version_id": versionID,
	})
}

func NewRegistrationCreatedEvent(registrationID, gatewayID, journeyID string) BaseEvent {
	return newEvent(EventRegistrationCreated, map[string]interface{}{
		"registration_id": registrationID,
		"gateway_id":      gatewayID,
		"journey_id":      journeyID,
	})
}

func NewDefaultMethodChangedEvent(providerID, methodID string) BaseEvent {
	return newEvent(EventDefaultMethodChanged, map[string]interface{}{
		"provider_id": providerID,
		"method_id":   methodID,
	})
}

func NewGatewayStatusChangedEvent(gatewayID, oldStatus, newStatus string) BaseEvent {
	return newEvent(EventGatewayStatusChanged, map[string]interface{}{
		"gateway_id": gatewayID,
		"old_status": oldStatus,
		"new_status": newStatus,
	})
}

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
