package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	carrierDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/carrier"
	categoryDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/category"
	gatewayDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/gateway"
	operatorDatamodel "github.com/ussdlab/journey-console/internal/core/datamodel/operator"
	"github.com/ussdlab/journey-console/internal/gateway"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"payment_transactions", "payment_methods", "gateway_registrations",
				"journey_versions", "journeys", "journey_categories",
				"gateway_menus", "gateways", "carriers", "operators",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear table %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedOperators(db)
		seedCarriers(db)
		seedCategories(db)
		seedGateways(db)

		fmt.Println("Seeding complete")
	},
}

func seedOperators(db *gorm.DB) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	operators := []operatorDatamodel.Operator{
		{ID: "op-admin", Email: "admin@journeyconsole.dev", Name: "Console Admin", PasswordHash: string(hash), Role: "admin", IsActive: true},
		{ID: "op-viewer", Email: "viewer@journeyconsole.dev", Name: "Console Viewer", PasswordHash: string(hash), Role: "viewer", IsActive: true},
	}

	for _, op := range operators {
		var count int64
		db.Model(&operatorDatamodel.Operator{}).Where("email = ?", op.Email).Count(&count)
		if count > 0 {
			fmt.Printf("operator %s already exists, skipping\n", op.Email)
			continue
		}
		op.CreatedAt = time.Now()
		op.UpdatedAt = time.Now()
		if err := db.Create(&op).Error; err != nil {
			log.Fatalf("failed to seed operator %s: %v", op.Email, err)
		}
		fmt.Printf("Seeded operator: %s (role %s)\n", op.Email, op.Role)
	}
}

func seedCarriers(db *gorm.DB) {
	carriers := []carrierDatamodel.Carrier{
		{ID: "car-mtn-cm", Code: "MTN-CM", Name: "MTN Cameroon", Country: "CM"},
		{ID: "car-orange-cm", Code: "ORANGE-CM", Name: "Orange Cameroon", Country: "CM"},
		{ID: "car-mtn-sn", Code: "MTN-SN", Name: "MTN Senegal", Country: "SN"},
		{ID: "car-orange-sn", Code: "ORANGE-SN", Name: "Orange Senegal", Country: "SN"},
	}

	for _, c := range carriers {
		var count int64
		db.Model(&carrierDatamodel.Carrier{}).Where("code = ?", c.Code).Count(&count)
		if count > 0 {
			continue
		}
		c.CreatedAt = time.Now()
		c.UpdatedAt = time.Now()
		if err := db.Create(&c).Error; err != nil {
			log.Fatalf("failed to seed carrier %s: %v", c.Code, err)
		}
		fmt.Printf("Seeded carrier: %s\n", c.Code)
	}
}

func seedCategories(db *gorm.DB) {
	categories := []categoryDatamodel.JourneyCategory{
		{ID: "cat-airtime-cm", Name: "Airtime & Bundles", Country: "CM", Description: "Topups and data bundles", IsActive: true},
		{ID: "cat-banking-cm", Name: "Mobile Banking", Country: "CM", Description: "Balance, transfers, mini statements", IsActive: true},
		{ID: "cat-utilities-cm", Name: "Utilities", Country: "CM", Description: "Electricity and water bill payments", IsActive: true},
		{ID: "cat-airtime-sn", Name: "Airtime & Bundles", Country: "SN", Description: "Topups and data bundles", IsActive: true},
		{ID: "cat-banking-sn", Name: "Mobile Banking", Country: "SN", Description: "Balance, transfers, mini statements", IsActive: true},
	}

	for _, c := range categories {
		var count int64
		db.Model(&categoryDatamodel.JourneyCategory{}).Where("id = ?", c.ID).Count(&count)
		if count > 0 {
			continue
		}
		c.CreatedAt = time.Now()
		c.UpdatedAt = time.Now()
		if err := db.Create(&c).Error; err != nil {
			log.Fatalf("failed to seed category %s: %v", c.Name, err)
		}
		fmt.Printf("Seeded category: %s (%s)\n", c.Name, c.Country)
	}
}

func demoGateways() []gatewayDatamodel.Gateway {
	return []gatewayDatamodel.Gateway{
		{
			ID: "gw-demo-cm", Name: "MTN CM Main USSD", Status: gateway.StatusActive,
			CarrierID: "car-mtn-cm", Country: "CM", ShortCode: "*126#",
			GatewayType: gateway.TypeMultiProvider, Description: "Demo USSD gateway for development", Seq: 1,
		},
		{
			ID: "gw-demo-sms-cm", Name: "MTN CM SMS", Status: gateway.StatusInactive,
			CarrierID: "car-mtn-cm", Country: "CM", ShortCode: "8080",
			GatewayType: gateway.TypeSingleProvider, Description: "Demo SMS gateway", Seq: 2,
		},
	}
}

func seedGateways(db *gorm.DB) {
	for _, g := range demoGateways() {
		var count int64
		db.Model(&gatewayDatamodel.Gateway{}).Where("id = ?", g.ID).Count(&count)
		if count > 0 {
			continue
		}
		g.CreatedAt = time.Now()
		g.UpdatedAt = time.Now()
		if err := db.Create(&g).Error; err != nil {
			log.Fatalf("failed to seed gateway %s: %v", g.ID, err)
		}
		fmt.Printf("Seeded gateway: %s (%s)\n", g.Name, g.ShortCode)
	}
}
