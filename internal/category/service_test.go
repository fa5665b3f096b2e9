package category_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	internal "github.com/ussdlab/journey-console/internal"
	"github.com/ussdlab/journey-console/internal/category"
	categoryDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/category"
)

func TestCategoryService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Service Suite")
}

type MockRepository struct {
	records    map[string]*categoryDatamodel.JourneyCategory
	order      []string
	fetchCalls int
}

func NewMockRepository() *MockRepository {
	return &MockRepository{records: make(map[string]*categoryDatamodel.JourneyCategory)}
}

func (m *MockRepository) GetByCountry(ctx context.Context, country string) ([]*categoryDatamodel.JourneyCategory, error) {
	m.fetchCalls++
	var result []*categoryDatamodel.JourneyCategory
	for _, id := range m.order {
		if record := m.records[id]; record.Country == country {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*categoryDatamodel.JourneyCategory, error) {
	return m.records[id], nil
}

func (m *MockRepository) Create(ctx context.Context, record *categoryDatamodel.JourneyCategory) error {
	m.records[record.ID] = record
	m.order = append(m.order, record.ID)
	return nil
}

func (m *MockRepository) Update(ctx context.Context, record *categoryDatamodel.JourneyCategory) error {
	m.records[record.ID] = record
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	delete(m.records, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

var _ = Describe("Category Service", func() {
	var (
		mockRepo *MockRepository
		service  *category.Service
		ctx      context.Context
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		service = category.NewService(mockRepo, logger)
		ctx = context.Background()
	})

	Describe("ListByCountry", func() {
		It("requires a country", func() {
			_, err := service.ListByCountry(ctx, "")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("serves repeat reads from the settled snapshot", func() {
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())

			first, err := service.ListByCountry(ctx, "CM")
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(HaveLen(1))
			fetches := mockRepo.fetchCalls

			second, err := service.ListByCountry(ctx, "CM")
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(mockRepo.fetchCalls).To(Equal(fetches), "settled snapshot answers without refetching")
		})

		It("refetches after a write invalidates the country", func() {
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())

			before, err := service.ListByCountry(ctx, "CM")
			Expect(err).NotTo(HaveOccurred())
			Expect(before).To(HaveLen(1))

			_, err = service.Create(ctx, category.CreateCategoryDTO{Name: "Health", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())

			after, err := service.ListByCountry(ctx, "CM")
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(HaveLen(2))
		})

		It("scopes snapshots per country", func() {
			_, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, category.CreateCategoryDTO{Name: "Transport", Country: "SN"})
			Expect(err).NotTo(HaveOccurred())

			cm, err := service.ListByCountry(ctx, "CM")
			Expect(err).NotTo(HaveOccurred())
			sn, err := service.ListByCountry(ctx, "SN")
			Expect(err).NotTo(HaveOccurred())

			Expect(cm).To(HaveLen(1))
			Expect(sn).To(HaveLen(1))
			Expect(cm[0].Name).To(Equal("Banking"))
			Expect(sn[0].Name).To(Equal("Transport"))
		})
	})

	Describe("Create", func() {
		It("requires name and country", func() {
			_, err := service.Create(ctx, category.CreateCategoryDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("marks new categories active", func() {
			record, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())
			Expect(record.IsActive).To(BeTrue())
			Expect(record.ID).To(HavePrefix("cat-"))
		})
	})

	Describe("Update", func() {
		It("returns not found for an unknown id", func() {
			_, err := service.Update(ctx, "cat-missing", category.UpdateCategoryDTO{})
			Expect(err).To(Equal(internal.ErrCategoryNotFound))
		})

		It("applies only the provided fields", func() {
			record, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM", Description: "money"})
			Expect(err).NotTo(HaveOccurred())

			inactive := false
			updated, err := service.Update(ctx, record.ID, category.UpdateCategoryDTO{IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.IsActive).To(BeFalse())
			Expect(updated.Name).To(Equal("Banking"))
			Expect(updated.Description).To(Equal("money"))
		})
	})

	Describe("Exists", func() {
		It("is false for inactive categories", func() {
			record, err := service.Create(ctx, category.CreateCategoryDTO{Name: "Banking", Country: "CM"})
			Expect(err).NotTo(HaveOccurred())

			ok, err := service.Exists(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			inactive := false
			_, err = service.Update(ctx, record.ID, category.UpdateCategoryDTO{IsActive: &inactive})
			Expect(err).NotTo(HaveOccurred())

			ok, err = service.Exists(ctx, record.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})
	})
})
