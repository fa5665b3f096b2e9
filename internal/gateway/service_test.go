package gateway_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	internal "github.com/ussdlab/journey-console/internal"
	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
	"github.com/ussdlab/journey-console/internal/gateway"
)

func TestGatewayService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Service Suite")
}

// MockRepository implements gateway.RepositoryAPI for testing
type MockRepository struct {
	gateways    []*gatewayDatamodel.Gateway
	createCalls int
	shouldFail  bool
	failError   error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) List(ctx context.Context, filter gateway.Filter) ([]*gatewayDatamodel.Gateway, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var result []*gatewayDatamodel.Gateway
	for _, record := range m.gateways {
		if filter.Matches(gateway.FromDataModel(record)) {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*gatewayDatamodel.Gateway, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, record := range m.gateways {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) Create(ctx context.Context, record *gatewayDatamodel.Gateway) error {
	m.createCalls++
	if m.shouldFail {
		return m.failError
	}
	m.gateways = append(m.gateways, record)
	return nil
}

func (m *MockRepository) Update(ctx context.Context, record *gatewayDatamodel.Gateway) error {
	if m.shouldFail {
		return m.failError
	}
	for i, existing := range m.gateways {
		if existing.ID == record.ID {
			m.gateways[i] = record
			return nil
		}
	}
	return nil
}

// MockCarrierLookup implements gateway.CarrierLookup
type MockCarrierLookup struct {
	carriers map[string]string // id -> country
}

func (m *MockCarrierLookup) GetByID(ctx context.Context, id string) (*gateway.CarrierRef, error) {
	country, ok := m.carriers[id]
	if !ok {
		return nil, internal.ErrCarrierNotFound
	}
	return &gateway.CarrierRef{ID: id, Country: country}, nil
}

var _ = Describe("Gateway Service", func() {
	var (
		mockRepo *MockRepository
		lookup   *MockCarrierLookup
		service  *gateway.Service
		logger   *slog.Logger
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		lookup = &MockCarrierLookup{carriers: map[string]string{"car-mtn-cm": "CM", "car-orange-sn": "SN"}}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = gateway.NewService(mockRepo, lookup, nil, nil, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("creates a gateway with INACTIVE initial status", func() {
			record, err := service.Create(ctx, gateway.CreateGatewayDTO{
				Name:        "Momo Gateway",
				CarrierID:   "car-mtn-cm",
				Country:     "CM",
				ShortCode:   "*126#",
				GatewayType: gateway.TypeMultiProvider,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(record.ID).To(HavePrefix("gw-"))
			Expect(record.Status).To(Equal(gateway.StatusInactive))
			Expect(mockRepo.createCalls).To(Equal(1))
		})

		It("short-circuits on a missing name without calling the repository", func() {
			_, err := service.Create(ctx, gateway.CreateGatewayDTO{
				Name:        "",
				CarrierID:   "car-mtn-cm",
				Country:     "CM",
				ShortCode:   "*126#",
				GatewayType: gateway.TypeMultiProvider,
			})
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors[0].Field).To(Equal("name"))

			Expect(mockRepo.createCalls).To(BeZero(), "no store write on validation failure")
		})

		It("collects every violated field in one validation error", func() {
			_, err := service.Create(ctx, gateway.CreateGatewayDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())

			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			fields := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
			}
			Expect(fields).To(ContainElements("name", "carrier_id", "country", "short_code", "gateway_type"))
		})

		It("rejects a carrier scoped to another country", func() {
			_, err := service.Create(ctx, gateway.CreateGatewayDTO{
				Name:        "Cross-border",
				CarrierID:   "car-orange-sn",
				Country:     "CM",
				ShortCode:   "*200#",
				GatewayType: gateway.TypeSingleProvider,
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(mockRepo.createCalls).To(BeZero())
		})
	})

	Describe("UpdateStatus", func() {
		It("moves a gateway through its status values", func() {
			record, err := service.Create(ctx, gateway.CreateGatewayDTO{
				Name:        "Momo Gateway",
				CarrierID:   "car-mtn-cm",
				Country:     "CM",
				ShortCode:   "*126#",
				GatewayType: gateway.TypeMultiProvider,
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := service.UpdateStatus(ctx, record.ID, gateway.UpdateGatewayStatusDTO{Status: gateway.StatusActive})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(gateway.StatusActive))
		})

		It("rejects an unknown status", func() {
			_, err := service.UpdateStatus(ctx, "gw-any", gateway.UpdateGatewayStatusDTO{Status: "RETIRED"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("returns not found for a missing gateway", func() {
			_, err := service.UpdateStatus(ctx, "gw-missing", gateway.UpdateGatewayStatusDTO{Status: gateway.StatusActive})
			Expect(err).To(Equal(internal.ErrGatewayNotFound))
		})
	})

	Describe("List", func() {
		It("requires a country scope", func() {
			_, err := service.List(ctx, gateway.Filter{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})

var _ = Describe("Gateway Filter", func() {
	records := []*gateway.Gateway{
		{ID: "gw-1", Name: "Momo Pay", Country: "CM", Status: "ACTIVE", CarrierID: "c1", GatewayType: "MULTI_PROVIDER", ShortCode: "*126#"},
		{ID: "gw-2", Name: "Airtime Topup", Country: "CM", Status: "ACTIVE", CarrierID: "c2", GatewayType: "SINGLE_PROVIDER", ShortCode: "*155#"},
		{ID: "gw-3", Name: "Sante Info", Country: "SN", Status: "MAINTENANCE", CarrierID: "c3", GatewayType: "MULTI_PROVIDER", ShortCode: "*300#"},
		{ID: "gw-4", Name: "Momo Legacy", Country: "CM", Status: "INACTIVE", CarrierID: "c1", GatewayType: "MULTI_PROVIDER", ShortCode: "*127#"},
	}

	ids := func(gs []*gateway.Gateway) []string {
		out := make([]string, 0, len(gs))
		for _, g := range gs {
			out = append(out, g.ID)
		}
		return out
	}

	It("imposes no constraint for absent fields", func() {
		Expect(ids(gateway.Filter{}.Apply(records))).To(Equal([]string{"gw-1", "gw-2", "gw-3", "gw-4"}))
	})

	It("composes predicates by intersection, in either order", func() {
		byStatusThenCarrier := gateway.Filter{CarrierID: "c1"}.Apply(gateway.Filter{Status: "ACTIVE"}.Apply(records))
		byCarrierThenStatus := gateway.Filter{Status: "ACTIVE"}.Apply(gateway.Filter{CarrierID: "c1"}.Apply(records))
		combined := gateway.Filter{Status: "ACTIVE", CarrierID: "c1"}.Apply(records)

		Expect(ids(byStatusThenCarrier)).To(Equal(ids(combined)))
		Expect(ids(byCarrierThenStatus)).To(Equal(ids(combined)))
		Expect(ids(combined)).To(Equal([]string{"gw-1"}))
	})

	It("matches search case-insensitively across name, description and short code", func() {
		Expect(ids(gateway.Filter{Search: "momo"}.Apply(records))).To(Equal([]string{"gw-1", "gw-4"}))
		Expect(ids(gateway.Filter{Search: "*155#"}.Apply(records))).To(Equal([]string{"gw-2"}))
	})

	It("never reorders surviving records", func() {
		surviving := gateway.Filter{Country: "CM"}.Apply(records)
		Expect(ids(surviving)).To(Equal([]string{"gw-1", "gw-2", "gw-4"}))
	})
})
