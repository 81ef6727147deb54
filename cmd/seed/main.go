package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"nextmove-cargo/internal/config"
	"nextmove-cargo/internal/database"
	"nextmove-cargo/internal/model"
	"nextmove-cargo/internal/repository"
	"nextmove-cargo/internal/service"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedProfile struct {
	email    string
	fullName string
	company  string
	phone    string
	role     string
}

var profiles = []seedProfile{
	{"admin@nextmove.test", "Platform Admin", "", "+22500000001", model.RoleAdmin},
	{"client@nextmove.test", "Awa Kone", "Kone Import", "+22500000002", model.RoleClient},
	{"forwarder@nextmove.test", "Marc Diallo", "Blue Ocean Freight", "+22500000003", model.RoleForwarder},
	{"forwarder2@nextmove.test", "Lina Traore", "Sahel Logistics", "+22500000004", model.RoleForwarder},
	{"driver@nextmove.test", "Yao Kouassi", "", "+22500000005", model.RoleDriver},
}

// seed creates demo accounts and one open RFQ with two pending offers.
func main() {
	password := flag.String("password", "nextmove123", "password for every seeded account")
	flag.Parse()

	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}
	db, err := database.NewConnection(cfg.Database.DSN(), false)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	ctx := context.Background()
	repo := repository.NewProfileRepository(db)
	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatalf("Hash password: %v", err)
	}

	byEmail := map[string]*model.Profile{}
	for _, sp := range profiles {
		existing, err := repo.FindByEmail(ctx, sp.email)
		if err == nil {
			byEmail[sp.email] = existing
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Lookup %s: %v", sp.email, err)
		}
		p := &model.Profile{
			Email:        sp.email,
			FullName:     sp.fullName,
			CompanyName:  sp.company,
			Phone:        sp.phone,
			Role:         sp.role,
			PasswordHash: hash,
		}
		if err := repo.Create(ctx, p); err != nil {
			log.Fatalf("Create %s: %v", sp.email, err)
		}
		byEmail[sp.email] = p
		log.Printf("Created %s (%s)", sp.email, sp.role)
	}

	client := byEmail["client@nextmove.test"]
	var open int64
	if err := db.Model(&model.RFQ{}).Where("client_id = ? AND status = ?", client.ID, model.RFQStatusOpen).Count(&open).Error; err != nil {
		log.Fatalf("Count RFQs: %v", err)
	}
	if open > 0 {
		log.Println("Demo RFQ already present, skipping")
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		rfq := &model.RFQ{
			ClientID:           client.ID,
			OriginPort:         "Shanghai",
			OriginCountry:      "China",
			DestinationPort:    "Abidjan",
			DestinationCountry: "Cote d'Ivoire",
			CargoType:          "general",
			CargoDescription:   "Packaged electronics, 2x40ft",
			WeightKg:           18000,
			VolumeCBM:          120,
			Quantity:           2,
			TransportMode:      "sea",
			ServiceType:        "door_to_port",
			Status:             model.RFQStatusOpen,
		}
		if err := tx.Create(rfq).Error; err != nil {
			return err
		}

		departure := time.Now().AddDate(0, 0, 7)
		transit := 35
		offers := []model.Offer{
			{RFQID: rfq.ID, ForwarderID: byEmail["forwarder@nextmove.test"].ID, TotalPrice: decimal.RequireFromString("4850.00"), Currency: "USD", DepartureDate: &departure, EstimatedTransitDays: &transit},
			{RFQID: rfq.ID, ForwarderID: byEmail["forwarder2@nextmove.test"].ID, TotalPrice: decimal.RequireFromString("5120.00"), Currency: "USD"},
		}
		return tx.Create(&offers).Error
	})
	if err != nil {
		log.Fatalf("Seed demo RFQ: %v", err)
	}
	log.Println("Seeded demo RFQ with two offers")
}
