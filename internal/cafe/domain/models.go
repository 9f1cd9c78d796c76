package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Cafe is a partner location. The commission rate is a fixed-point decimal
// with 4 fractional digits; it is never stored or computed as a float.
type Cafe struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	PartnerID      snowflake.ID    `gorm:"column:partner_id;not null;index" json:"partnerId"`
	Name           string          `gorm:"type:text;not null" json:"name"`
	CommissionRate decimal.Decimal `gorm:"column:commission_rate;type:numeric(5,4);not null" json:"commissionRate"`
	Status         Status          `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Cafe) TableName() string { return "cafes" }
