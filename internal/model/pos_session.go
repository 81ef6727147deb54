package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// POSSessionStatus enum constants
const (
	POSSessionOpen   = "open"
	POSSessionClosed = "closed"
)

// POSSession is a counter session for walk-in cargo drop-off payments
type POSSession struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OperatorID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_pos_sessions_open_operator,where:status = 'open'" json:"operator_id"` // one open session per operator
	Status       string           `gorm:"type:varchar(10);not null;default:'open';index" json:"status"`
	OpeningFloat decimal.Decimal  `gorm:"type:decimal(18,2);not null" json:"opening_float"`
	SalesTotal   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"sales_total"`
	SalesCount   int              `gorm:"not null;default:0" json:"sales_count"`
	ExpectedCash *decimal.Decimal `gorm:"type:decimal(18,2)" json:"expected_cash"`
	ClosingCash  *decimal.Decimal `gorm:"type:decimal(18,2)" json:"closing_cash"`
	Notes        string           `gorm:"type:text" json:"notes"`
	OpenedAt     time.Time        `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time       `json:"closed_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (POSSession) TableName() string { return "pos_sessions" }
