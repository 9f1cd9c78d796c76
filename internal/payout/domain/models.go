package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusApproved Status = "APPROVED"
	StatusPaid     Status = "PAID"
)

// Entry groups a partner's conversions into a settlement period. Transitions
// are strictly forward: DRAFT -> APPROVED -> PAID. Settled entries are never
// mutated; corrections go through negative compensating entries.
type Entry struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	PartnerID       snowflake.ID    `gorm:"column:partner_id;not null;index" json:"partnerId"`
	PeriodStart     time.Time       `gorm:"column:period_start;not null" json:"periodStart"`
	PeriodEnd       time.Time       `gorm:"column:period_end;not null" json:"periodEnd"`
	Status          Status          `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	TotalCommission decimal.Decimal `gorm:"column:total_commission;type:numeric(12,2);not null" json:"totalCommission"`
	ReversesEntryID *snowflake.ID   `gorm:"column:reverses_entry_id" json:"reversesEntryId,omitempty"`
	Reason          string          `gorm:"type:text" json:"reason,omitempty"`
	ApprovedAt      *time.Time      `gorm:"column:approved_at" json:"approvedAt,omitempty"`
	PaidAt          *time.Time      `gorm:"column:paid_at" json:"paidAt,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Entry) TableName() string { return "payout_entries" }

// Stats is the partner roll-up served by a single aggregation query.
type Stats struct {
	TotalCafes       int64           `json:"totalCafes"`
	TotalLinks       int64           `json:"totalLinks"`
	TotalConversions int64           `json:"totalConversions"`
	TotalCommission  decimal.Decimal `json:"totalCommission"`
}
