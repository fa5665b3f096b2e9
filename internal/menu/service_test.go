package menu_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sort"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	internal "github.com/ussdlab/journey-console/internal"
	menuDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/menu"
	"github.com/ussdlab/journey-console/internal/menu"
)

func TestMenuService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Menu Service Suite")
}

// MockRepository implements menu.RepositoryAPI with the same atomic batch
// semantics as the transactional implementation.
type MockRepository struct {
	menus         []*menuDatamodel.GatewayMenu
	insertCalls   int
	failBatch     bool
	failBatchWith error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) ListByGateway(ctx context.Context, gatewayID string) ([]*menuDatamodel.GatewayMenu, error) {
	var result []*menuDatamodel.GatewayMenu
	for _, record := range m.menus {
		if record.GatewayID == gatewayID {
			result = append(result, record)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Position < result[j].Position })
	return result, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*menuDatamodel.GatewayMenu, error) {
	for _, record := range m.menus {
		if record.ID == id {
			return record, nil
		}
	}
	return nil, nil
}

func (m *MockRepository) InsertAt(ctx context.Context, record *menuDatamodel.GatewayMenu) error {
	m.insertCalls++
	for _, sibling := range m.menus {
		if sibling.GatewayID == record.GatewayID && sibling.Position >= record.Position {
			sibling.Position++
		}
	}
	m.menus = append(m.menus, record)
	return nil
}

func (m *MockRepository) Update(ctx context.Context, record *menuDatamodel.GatewayMenu) error {
	for i, existing := range m.menus {
		if existing.ID == record.ID {
			m.menus[i] = record
		}
	}
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	for i, record := range m.menus {
		if record.ID == id {
			m.menus = append(m.menus[:i], m.menus[i+1:]...)
			for _, sibling := range m.menus {
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
	if m.failBatch {
		// nothing applied: the transactional implementation rolls back
		return m.failBatchWith
	}
	for _, record := range m.menus {
		if record.GatewayID == gatewayID {
			if position, ok := positions[record.ID]; ok {
				record.Position = position
			}
		}
	}
	return nil
}

type alwaysExists struct{}

func (alwaysExists) Exists(ctx context.Context, gatewayID string) (bool, error) {
	return gatewayID != "gw-missing", nil
}

var _ = Describe("Menu Service", func() {
	var (
		mockRepo *MockRepository
		service  *menu.Service
		ctx      context.Context
	)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	positionsOf := func(menus []menu.GatewayMenu) []int {
		out := make([]int, 0, len(menus))
		for _, m := range menus {
			out = append(out, m.Position)
		}
		return out
	}

	seed := func(n int) []string {
		ids := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			record, err := service.Create(ctx, "gw-1", menu.CreateMenuDTO{
				MenuText: "Item",
				Position: i,
			})
			Expect(err).NotTo(HaveOccurred())
			ids = append(ids, record.ID)
		}
		return ids
	}

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		service = menu.NewService(mockRepo, alwaysExists{}, logger)
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("requires menu text and position before touching the repository", func() {
			_, err := service.Create(ctx, "gw-1", menu.CreateMenuDTO{})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
			Expect(mockRepo.insertCalls).To(BeZero())
		})

		It("shifts later siblings when inserting in the middle", func() {
			ids := seed(3)

			record, err := service.Create(ctx, "gw-1", menu.CreateMenuDTO{MenuText: "Inserted", Position: 2})
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Position).To(Equal(2))

			menus, err := service.ListByGateway(ctx, "gw-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(positionsOf(menus)).To(Equal([]int{1, 2, 3, 4}))
			Expect(menus[1].ID).To(Equal(record.ID))
			Expect(menus[2].ID).To(Equal(ids[1]))
		})

		It("clamps a position past the end to N+1", func() {
			seed(2)
			record, err := service.Create(ctx, "gw-1", menu.CreateMenuDTO{MenuText: "Tail", Position: 99})
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Position).To(Equal(3))
		})

		It("rejects an unknown gateway", func() {
			_, err := service.Create(ctx, "gw-missing", menu.CreateMenuDTO{MenuText: "x", Position: 1})
			Expect(err).To(Equal(internal.ErrGatewayNotFound))
		})
	})

	Describe("Delete", func() {
		It("closes the position gap", func() {
			ids := seed(4)

			Expect(service.Delete(ctx, ids[1])).To(Succeed())

			menus, err := service.ListByGateway(ctx, "gw-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(positionsOf(menus)).To(Equal([]int{1, 2, 3}))
		})
	})

	Describe("Reorder", func() {
		It("recomputes positions as 1-based indexes of the new ordering", func() {
			ids := seed(3)

			menus, err := service.Reorder(ctx, "gw-1", menu.ReorderDTO{
				OrderedIDs: []string{ids[2], ids[0], ids[1]},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(positionsOf(menus)).To(Equal([]int{1, 2, 3}))
			Expect(menus[0].ID).To(Equal(ids[2]))
			Expect(menus[1].ID).To(Equal(ids[0]))
			Expect(menus[2].ID).To(Equal(ids[1]))
		})

		It("rejects an ordering that is not a permutation of the current ids", func() {
			ids := seed(3)

			_, err := service.Reorder(ctx, "gw-1", menu.ReorderDTO{
				OrderedIDs: []string{ids[0], ids[0], ids[1]},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))

			_, err = service.Reorder(ctx, "gw-1", menu.ReorderDTO{OrderedIDs: ids[:2]})
			Expect(err).To(HaveOccurred())
		})

		It("leaves every position untouched when the batch fails", func() {
			ids := seed(3)
			mockRepo.failBatch = true
			mockRepo.failBatchWith = errors.New("write timeout")

			_, err := service.Reorder(ctx, "gw-1", menu.ReorderDTO{
				OrderedIDs: []string{ids[2], ids[1], ids[0]},
			})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeConflict))

			mockRepo.failBatch = false
			menus, err := service.ListByGateway(ctx, "gw-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(menus[0].ID).To(Equal(ids[0]), "old ordering survives a failed batch")
			Expect(positionsOf(menus)).To(Equal([]int{1, 2, 3}))
		})
	})
})
