package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enum constants
const (
	NotificationFeedbackRequest = "feedback_request"
	NotificationOfferAccepted   = "offer_accepted"
	NotificationOfferRejected   = "offer_rejected"
	NotificationShipmentUpdate  = "shipment_update"
	NotificationPODReviewed     = "pod_reviewed"
	NotificationPaymentUpdate   = "payment_update"
)

// Notification is an in-app message for a single recipient
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Type        string    `gorm:"type:varchar(30);not null;index" json:"type"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Message     string    `gorm:"type:text" json:"message"`
	Link        string    `gorm:"type:text" json:"link"`
	Read        bool      `gorm:"not null;default:false;index" json:"read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
