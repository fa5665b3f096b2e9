package registration

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/ussdlab/journey-console/internal/transport"
)

type ServiceAPI interface {
	ListByGateway(ctx context.Context, gatewayID string) ([]GatewayRegistration, error)
	GetByID(ctx context.Context, id string) (*GatewayRegistration, error)
	Create(ctx context.Context, gatewayID string, dto CreateRegistrationDTO) (*GatewayRegistration, error)
	Update(ctx context.Context, id string, dto UpdateRegistrationDTO) (*GatewayRegistration, error)
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, gatewayID string, dto ReorderDTO) ([]GatewayRegistration, error)
	ConsumeCredits(ctx context.Context, id string, dto ConsumeCreditsDTO) (*GatewayRegistration, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	registrations, err := h.Service.ListByGateway(r.Context(), chi.URLParam(r, "gatewayID"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	responses := make([]RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		responses = append(responses, registrations[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, RegistrationsResponse{Registrations: responses})
}

func (h *Handler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	record, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var dto CreateRegistrationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Create(r.Context(), chi.URLParam(r, "gatewayID"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, record.ToResponse())
}

func (h *Handler) UpdateRegistration(w http.ResponseWriter, r *http.Request) {
	var dto UpdateRegistrationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ReorderRegistrations(w http.ResponseWriter, r *http.Request) {
	var dto ReorderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	registrations, err := h.Service.Reorder(r.Context(), chi.URLParam(r, "gatewayID"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	responses := make([]RegistrationResponse, 0, len(registrations))
	for i := range registrations {
		responses = append(responses, registrations[i].ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, RegistrationsResponse{Registrations: responses})
}

func (h *Handler) ConsumeCredits(w http.ResponseWriter, r *http.Request) {
	var dto ConsumeCreditsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.Service.ConsumeCredits(r.Context(), chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}
