package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferStatus enum constants
const (
	OfferStatusPending   = "pending"
	OfferStatusAccepted  = "accepted"
	OfferStatusRejected  = "rejected"
	OfferStatusWithdrawn = "withdrawn"
)

// Offer is a forwarder's priced bid against an RFQ
type Offer struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQID                uuid.UUID       `gorm:"column:rfq_id;type:uuid;not null;index" json:"rfq_id"`
	RFQ                  *RFQ            `gorm:"foreignKey:RFQID" json:"rfq,omitempty"`
	ForwarderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"forwarder_id"`
	Forwarder            *Profile        `gorm:"foreignKey:ForwarderID" json:"forwarder,omitempty"`
	TotalPrice           decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_price"`
	Currency             string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	DepartureDate        *time.Time      `json:"departure_date"`
	EstimatedTransitDays *int            `json:"estimated_transit_days"`
	Status               string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectionReason      string          `gorm:"type:text" json:"rejection_reason"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (Offer) TableName() string { return "rfq_offers" }
