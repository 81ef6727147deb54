package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShipmentStatus enum constants
const (
	ShipmentPendingPayment = "pending_payment"
	ShipmentPending        = "pending"
	ShipmentInTransit      = "in_transit"
	ShipmentCustoms        = "customs"
	ShipmentDelivered      = "delivered"
	ShipmentCancelled      = "cancelled"
	ShipmentCompleted      = "completed"
)

// PaymentStatus enum constants
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Shipment is the operational record created once an offer is accepted.
// Route, cargo and carrier fields are snapshots taken at creation time.
type Shipment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TrackingNumber       string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"tracking_number"`
	RFQID                uuid.UUID       `gorm:"column:rfq_id;type:uuid;uniqueIndex;not null" json:"rfq_id"`
	OfferID              uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"offer_id"`
	ClientID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	ForwarderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"forwarder_id"`
	Status               string          `gorm:"type:varchar(20);not null;default:'pending_payment';index" json:"status"`
	PaymentStatus        string          `gorm:"type:varchar(10);not null;default:'unpaid'" json:"payment_status"`
	OriginPort           string          `gorm:"type:varchar(120)" json:"origin_port"`
	OriginCountry        string          `gorm:"type:varchar(80)" json:"origin_country"`
	DestinationPort      string          `gorm:"type:varchar(120)" json:"destination_port"`
	DestinationCountry   string          `gorm:"type:varchar(80)" json:"destination_country"`
	CargoType            string          `gorm:"type:varchar(80)" json:"cargo_type"`
	CargoWeightKg        float64         `json:"cargo_weight_kg"`
	CargoVolumeCBM       float64         `json:"cargo_volume_cbm"`
	Packages             int             `json:"packages"`
	TransportMode        string          `gorm:"type:varchar(20)" json:"transport_mode"`
	ServiceType          string          `gorm:"type:varchar(40)" json:"service_type"`
	Price                decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"price"`
	Currency             string          `gorm:"type:varchar(3);not null" json:"currency"`
	DepartureDate        time.Time       `json:"departure_date"`
	EstimatedArrivalDate time.Time       `json:"estimated_arrival_date"`
	ActualArrivalDate    *time.Time      `json:"actual_arrival_date"`
	CarrierName          string          `gorm:"type:varchar(255)" json:"carrier_name"`
	CarrierLogo          string          `gorm:"type:text" json:"carrier_logo"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}
