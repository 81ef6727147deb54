package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType enum constants
const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

// Coupon is an admin-issued discount code applied at checkout
type Coupon struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code         string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"code"`
	DiscountType string          `gorm:"type:varchar(20);not null" json:"discount_type"`
	Value        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"value"`
	MinAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"min_amount"`
	MaxUses      int             `gorm:"not null;default:0" json:"max_uses"` // 0 = unlimited
	UsedCount    int             `gorm:"not null;default:0" json:"used_count"`
	ExpiresAt    *time.Time      `json:"expires_at"`
	Active       bool            `gorm:"not null;default:true" json:"active"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
