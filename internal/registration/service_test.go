package registration_test

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	internal "github.com/ussdlab/journey-console/internal"
	registrationDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/registration"
	"github.com/ussdlab/journey-console/internal/registration"
)

func TestRegistrationService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Registration Service Suite")
}

type MockRepository struct {
	records     []*registrationDatamodel.GatewayRegistration
	insertCalls int

	// When updateEntered is set, Update signals it and then waits on
	// updateRelease before applying the write.
	updateEntered chan struct{}
	updateRelease chan struct{}
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) ListByGateway(ctx context.Context, gatewayID string) ([]*registrationDatamodel.GatewayRegistration, error) {
	var result []*registrationDatamodel.GatewayRegistration
	for _, record := range m.records {
		if record.GatewayID == gatewayID {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*registrationDatamodel.GatewayRegistration, error) {
	for _, record := range m.records {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) InsertAt(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error {
	m.insertCalls++
	for _, sibling := range m.records {
		if sibling.GatewayID == record.GatewayID && sibling.Position >= record.Position {
			sibling.Position++
		}
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockRepository) Update(ctx context.Context, record *registrationDatamodel.GatewayRegistration) error {
	if m.updateEntered != nil {
		m.updateEntered <- struct{}{}
		<-m.updateRelease
	}
	for i, existing := range m.records {
		if existing.ID == record.ID {
			m.records[i] = record
		}
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	for i, record := range m.records {
		if record.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			for _, sibling := range m.records {
				if sibling.GatewayID == record.GatewayID && sibling.Position > record.Position {
					sibling.Position--
				}
			}
			return nil
		}
	}
	return nil
}

func (m *MockRepository) UpdatePositions(ctx context.Context, gatewayID string, positions map[string]int) error {
	for _, record := range m.records {
		if record.GatewayID == gatewayID {
			if position, ok := positions[record.ID]; ok {
				record.Position = position
			}
		}
	}
	return nil
}

type stubGateways struct{}

func (stubGateways) Exists(ctx context.Context, gatewayID string) (bool, error) {
	return gatewayID != "gw-missing", nil
}

type stubJourneys struct {
	published map[string]bool
}

func (s stubJourneys) IsPublished(ctx context.Context, journeyID string) (bool, error) {
	return s.published[journeyID], nil
}

var _ = Describe("Registration Service", func() {
	var (
		mockRepo *MockRepository
		service  *registration.Service
		ctx      context.Context
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	create := func(dto registration.CreateRegistrationDTO) *registration.GatewayRegistration {
		record, err := service.Create(ctx, "gw-1", dto)
		Expect(err).NotTo(HaveOccurred())
		return record
	}

	baseDTO := func(position int) registration.CreateRegistrationDTO {
		return registration.CreateRegistrationDTO{
			Name:       "Airtime",
			MenuText:   "Buy airtime",
			Position:   position,
			JourneyID:  "jrn-live",
			ProviderID: "prov-1",
		}
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		journeys := stubJourneys{published: map[string]bool{"jrn-live": true}}
		service = registration.NewService(mockRepo, stubGateways{}, journeys, nil, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("short-circuits on missing required fields", func() {
			_, err := service.Create(ctx, "gw-1", registration.CreateRegistrationDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(mockRepo.insertCalls).To(BeZero())
		})

		It("rejects a journey that is not published", func() {
			dto := baseDTO(1)
			dto.JourneyID = "jrn-draft"
			_, err := service.Create(ctx, "gw-1", dto)
			Expect(err).To(Equal(internal.ErrJourneyNotPublished))
			Expect(mockRepo.insertCalls).To(BeZero())
		})

		It("rejects an inconsistent credit balance", func() {
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 100, Used: 30, Remaining: 60}
			_, err := service.Create(ctx, "gw-1", dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(mockRepo.insertCalls).To(BeZero())
		})

		It("stores a consistent credit balance", func() {
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 100, Used: 30, Remaining: 70}
			record := create(dto)
			Expect(record.Credits).NotTo(BeNil())
			Expect(record.Credits.Used + record.Credits.Remaining).To(Equal(record.Credits.Total))
		})
	})

	Describe("positions", func() {
		positionsOf := func(regs []registration.GatewayRegistration) []int {
			out := make([]int, 0, len(regs))
			for _, r := range regs {
				out = append(out, r.Position)
			}
			return out
		}

		It("stay dense across insert, delete and reorder", func() {
			first := create(baseDTO(1))
			second := create(baseDTO(2))
			third := create(baseDTO(3))

			Expect(service.Delete(ctx, second.ID)).To(Succeed())

			regs, err := service.ListByGateway(ctx, "gw-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(positionsOf(regs)).To(Equal([]int{1, 2}))

			regs, err = service.Reorder(ctx, "gw-1", registration.ReorderDTO{
				OrderedIDs: []string{third.ID, first.ID},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(positionsOf(regs)).To(Equal([]int{1, 2}))
			Expect(regs[0].ID).To(Equal(third.ID))
		})

		It("rejects a non-permutation ordering", func() {
			first := create(baseDTO(1))
			create(baseDTO(2))

			_, err := service.Reorder(ctx, "gw-1", registration.ReorderDTO{
				OrderedIDs: []string{first.ID, first.ID},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("ConsumeCredits", func() {
		It("conserves the total while moving credits to used", func() {
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 100, Used: 0, Remaining: 100}
			record := create(dto)

			updated, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 35})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Credits.Used).To(Equal(int64(35)))
			Expect(updated.Credits.Remaining).To(Equal(int64(65)))
			Expect(updated.Credits.Used + updated.Credits.Remaining).To(Equal(updated.Credits.Total))
		})

		It("rejects overdraw", func() {
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 10, Used: 5, Remaining: 5}
			record := create(dto)

			_, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 6})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("rejects an expired balance", func() {
			expired := time.Now().Add(-time.Hour)
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 10, Used: 0, Remaining: 10, ExpiresAt: &expired}
			record := create(dto)

			_, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))
		})

		It("rejects a second consume while one is still in flight", func() {
			dto := baseDTO(1)
			dto.Credits = &registration.CreditBalanceDTO{Total: 100, Used: 0, Remaining: 100}
			record := create(dto)

			mockRepo.updateEntered = make(chan struct{})
			mockRepo.updateRelease = make(chan struct{})

			firstDone := make(chan error, 1)
			go func() {
				_, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 40})
				firstDone <- err
			}()
			Eventually(mockRepo.updateEntered).Should(Receive())

			_, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 40})
			Expect(err).To(Equal(internal.ErrMutationInFlight))

			close(mockRepo.updateRelease)
			Expect(<-firstDone).NotTo(HaveOccurred())
			mockRepo.updateEntered = nil

			current, err := service.GetByID(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.Credits.Used).To(Equal(int64(40)))
			Expect(current.Credits.Remaining).To(Equal(int64(60)))

			updated, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 40})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Credits.Used).To(Equal(int64(80)))
			Expect(updated.Credits.Remaining).To(Equal(int64(20)))
		})

		It("rejects a registration without credits", func() {
			record := create(baseDTO(1))
			_, err := service.ConsumeCredits(ctx, record.ID, registration.ConsumeCreditsDTO{Amount: 1})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Update", func() {
		It("validates a replacement credit balance", func() {
			record := create(baseDTO(1))
			_, err := service.Update(ctx, record.ID, registration.UpdateRegistrationDTO{
				Credits: &registration.CreditBalanceDTO{Total: 50, Used: 10, Remaining: 50},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})
})
