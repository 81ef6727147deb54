package model

import (
	"time"

	"github.com/google/uuid"
)

// RFQStatus enum constants
const (
	RFQStatusOpen          = "open"
	RFQStatusOfferAccepted = "offer_accepted"
	RFQStatusClosed        = "closed"
	RFQStatusCancelled     = "cancelled"
)

// RFQ is a client's request for quote
type RFQ struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ClientID           uuid.UUID `gorm:"type:uuid;not null;index" json:"client_id"`
	Client             *Profile  `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	OriginPort         string    `gorm:"type:varchar(120)" json:"origin_port"`
	OriginCountry      string    `gorm:"type:varchar(80)" json:"origin_country"`
	DestinationPort    string    `gorm:"type:varchar(120)" json:"destination_port"`
	DestinationCountry string    `gorm:"type:varchar(80)" json:"destination_country"`
	CargoType          string    `gorm:"type:varchar(80)" json:"cargo_type"`
	CargoDescription   string    `gorm:"type:text" json:"cargo_description"`
	WeightKg           float64   `json:"weight_kg"`
	VolumeCBM          float64   `json:"volume_cbm"`
	Quantity           int       `json:"quantity"`
	TransportMode      string    `gorm:"type:varchar(20)" json:"transport_mode"` // sea, air, road
	ServiceType        string    `gorm:"type:varchar(40)" json:"service_type"`
	Status             string    `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (RFQ) TableName() string { return "rfq_requests" }
