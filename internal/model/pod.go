package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PODStatus enum constants
const (
	PODPending  = "pending"
	PODVerified = "verified"
	PODRejected = "rejected"
)

// PODDocument is one uploaded file of a proof-of-delivery set
type PODDocument struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
}

// POD is a proof of delivery attached to a shipment.
// Status only moves from pending to verified or rejected.
type POD struct {
	ID             uuid.UUID                        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ShipmentID     uuid.UUID                        `gorm:"type:uuid;not null;index" json:"shipment_id"`
	Shipment       *Shipment                        `gorm:"foreignKey:ShipmentID" json:"shipment,omitempty"`
	TrackingNumber string                           `gorm:"type:varchar(20);index" json:"tracking_number"`
	Status         string                           `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SubmittedBy    uuid.UUID                        `gorm:"type:uuid;not null" json:"submitted_by"`
	SubmittedAt    time.Time                        `gorm:"not null" json:"submitted_at"`
	ForwarderName  string                           `gorm:"type:varchar(255)" json:"forwarder_name"`
	ClientName     string                           `gorm:"type:varchar(255)" json:"client_name"`
	Documents      datatypes.JSONSlice[PODDocument] `gorm:"type:jsonb" json:"documents"`
	Notes          string                           `gorm:"type:text" json:"notes"`
	ReviewerID     *uuid.UUID                       `gorm:"type:uuid" json:"reviewer_id"`
	ReviewNotes    string                           `gorm:"type:text" json:"review_notes"`
	ReviewedAt     *time.Time                       `json:"reviewed_at"`
	VerifiedAt     *time.Time                       `json:"verified_at"`
	CreatedAt      time.Time                        `json:"created_at"`
	UpdatedAt      time.Time                        `json:"updated_at"`
}

func (POD) TableName() string { return "pods" }
