package postgres_test

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
	"github.com/ussdlab/journey-console/internal/gateway"
	gatewayPostgres "github.com/ussdlab/journey-console/internal/gateway/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGatewayPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Gateway Postgres Suite")
}

// SQLiteGateway is a SQLite-compatible model for testing
type SQLiteGateway struct {
	ID          string    `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Status      string    `gorm:"column:status"`
	CarrierID   string    `gorm:"column:carrier_id"`
	Country     string    `gorm:"column:country"`
	ShortCode   string    `gorm:"column:short_code"`
	GatewayType string    `gorm:"column:gateway_type"`
	Description string    `gorm:"column:description"`
	Seq         int64     `gorm:"column:seq"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (SQLiteGateway) TableName() string {
	return "gateways"
}

var _ = Describe("Gateway PostgreSQL Repository", func() {
	var (
		db   *gorm.DB
		repo gateway.RepositoryAPI
		ctx  context.Context
	)

	insert := func(id, country, status, carrierID, name, shortCode string) {
		err := repo.Create(ctx, &gatewayDatamodel.Gateway{
			ID:          id,
			Name:        name,
			Status:      status,
			CarrierID:   carrierID,
			Country:     country,
			ShortCode:   shortCode,
			GatewayType: gateway.TypeMultiProvider,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteGateway{})
		Expect(err).NotTo(HaveOccurred())

		repo = gatewayPostgres.NewGatewayRepository(db)
		ctx = context.Background()
	})

	Describe("List", func() {
		It("returns country+status survivors in insertion order", func() {
			insert("gw-1", "CM", "ACTIVE", "c1", "First", "*1#")
			insert("gw-2", "CM", "ACTIVE", "c1", "Second", "*2#")
			insert("gw-3", "SN", "MAINTENANCE", "c2", "Third", "*3#")
			insert("gw-4", "CM", "INACTIVE", "c1", "Fourth", "*4#")
			insert("gw-5", "CM", "ACTIVE", "c3", "Fifth", "*5#")

			records, err := repo.List(ctx, gateway.Filter{Country: "CM", Status: "ACTIVE"})
			Expect(err).NotTo(HaveOccurred())

			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.ID)
			}
			Expect(ids).To(Equal([]string{"gw-1", "gw-2", "gw-5"}))
		})

		It("matches a search needle against short code", func() {
			insert("gw-1", "CM", "ACTIVE", "c1", "Momo Pay", "*126#")
			insert("gw-2", "CM", "ACTIVE", "c1", "Topup", "*155#")

			records, err := repo.List(ctx, gateway.Filter{Country: "CM", Search: "*155#"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).To(Equal("gw-2"))
		})

		It("returns an empty result for a country with no gateways", func() {
			records, err := repo.List(ctx, gateway.Filter{Country: "GH"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(BeEmpty())
		})
	})

	Describe("GetByID", func() {
		It("returns nil for a missing id", func() {
			record, err := repo.GetByID(ctx, "gw-missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(record).To(BeNil())
		})
	})

	Describe("Update", func() {
		It("persists changed fields without disturbing insertion order", func() {
			insert("gw-1", "CM", "ACTIVE", "c1", "First", "*1#")
			insert("gw-2", "CM", "ACTIVE", "c1", "Second", "*2#")

			record, err := repo.GetByID(ctx, "gw-1")
			Expect(err).NotTo(HaveOccurred())
			record.Name = "Renamed"
			Expect(repo.Update(ctx, record)).To(Succeed())

			records, err := repo.List(ctx, gateway.Filter{Country: "CM"})
			Expect(err).NotTo(HaveOccurred())
			Expect(records[0].Name).To(Equal("Renamed"))
			Expect(records[0].ID).To(Equal("gw-1"))
		})
	})
})
