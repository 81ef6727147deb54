package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionStatus enum constants
const (
	TransactionPending   = "pending"
	TransactionCompleted = "completed"
	TransactionFailed    = "failed"
)

// Payment provider names
const (
	ProviderStripe      = "stripe"
	ProviderFlutterwave = "flutterwave"
	ProviderCinetPay    = "cinetpay"
)

// Transaction is one checkout attempt with a payment provider
type Transaction struct {
	ID                uuid.UUID                             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            uuid.UUID                             `gorm:"type:uuid;not null;index" json:"user_id"`
	ShipmentID        *uuid.UUID                            `gorm:"type:uuid;index" json:"shipment_id"`
	Provider          string                                `gorm:"type:varchar(20);not null" json:"provider"`
	Reference         string                                `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	ProviderReference string                                `gorm:"type:varchar(255);index" json:"provider_reference"`
	Amount            decimal.Decimal                       `gorm:"type:decimal(18,2);not null" json:"amount"`
	DiscountAmount    decimal.Decimal                       `gorm:"type:decimal(18,2);not null;default:0" json:"discount_amount"`
	Currency          string                                `gorm:"type:varchar(3);not null" json:"currency"`
	CouponID          *uuid.UUID                            `gorm:"type:uuid" json:"coupon_id"`
	Status            string                                `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	FailureReason     string                                `gorm:"type:text" json:"failure_reason"`
	Metadata          datatypes.JSONType[map[string]string] `gorm:"type:jsonb" json:"metadata"`
	CreatedAt         time.Time                             `json:"created_at"`
	UpdatedAt         time.Time                             `json:"updated_at"`
}
