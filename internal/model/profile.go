package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Profile role constants
const (
	RoleClient    = "client"
	RoleForwarder = "forwarder"
	RoleAdmin     = "admin"
	RoleDriver    = "driver"
)

// AutomationSettings holds per-forwarder opt-outs for automated messages.
// A nil flag means the automation is enabled.
type AutomationSettings struct {
	DeliveryFeedbackEnabled *bool `json:"delivery_feedback_enabled,omitempty"`
	SMSUpdatesEnabled       *bool `json:"sms_updates_enabled,omitempty"`
}

// DeliveryFeedbackDisabled reports whether the flag is explicitly false.
func (a AutomationSettings) DeliveryFeedbackDisabled() bool {
	return a.DeliveryFeedbackEnabled != nil && !*a.DeliveryFeedbackEnabled
}

func (a AutomationSettings) SMSUpdatesDisabled() bool {
	return a.SMSUpdatesEnabled != nil && !*a.SMSUpdatesEnabled
}

// Profile is the account of a client, forwarder, driver or admin
type Profile struct {
	ID                 uuid.UUID                              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email              string                                 `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName           string                                 `gorm:"type:varchar(255)" json:"full_name"`
	CompanyName        string                                 `gorm:"type:varchar(255)" json:"company_name"`
	Phone              string                                 `gorm:"type:varchar(30)" json:"phone"`
	Role               string                                 `gorm:"type:varchar(20);not null;index" json:"role"` // client, forwarder, admin, driver
	AvatarURL          string                                 `gorm:"type:text" json:"avatar_url"`
	PasswordHash       string                                 `gorm:"type:varchar(255)" json:"-"`
	AutomationSettings datatypes.JSONType[AutomationSettings] `gorm:"type:jsonb" json:"automation_settings"`
	CreatedAt          time.Time                              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time                              `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt                         `gorm:"index" json:"-"`
}

// DisplayName prefers the company name, as shown on carrier cards
func (p Profile) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	return p.FullName
}
