package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionAcceptOffer          = "ACCEPT_OFFER"
	ActionRejectSiblingOffers  = "REJECT_SIBLING_OFFERS"
	ActionCreateShipment       = "CREATE_SHIPMENT"
	ActionUpdateShipmentStatus = "UPDATE_SHIPMENT_STATUS"

	// Proof of delivery review
	ActionSubmitPOD = "SUBMIT_POD"
	ActionVerifyPOD = "VERIFY_POD"
	ActionRejectPOD = "REJECT_POD"

	ActionPaymentCompleted = "PAYMENT_COMPLETED"
	ActionPaymentFailed    = "PAYMENT_FAILED"
	ActionCreateCoupon     = "CREATE_COUPON"
	ActionDeactivateCoupon = "DEACTIVATE_COUPON"
	ActionOpenPOSSession   = "OPEN_POS_SESSION"
	ActionClosePOSSession  = "CLOSE_POS_SESSION"
)

// AuditLog tracks who changed what and when for workflow transitions
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id"` // nil for automation and webhooks
	Actor      *Profile   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
