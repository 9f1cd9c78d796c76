package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

// Partner is the organization on whose behalf referral commissions accrue.
// Partners are never hard-deleted; lifecycle is status-only.
type Partner struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID            string       `gorm:"column:org_id;type:text;not null;uniqueIndex:ux_partners_org_id" json:"orgId"`
	OrgName          string       `gorm:"column:org_name;type:text;not null" json:"orgName"`
	BusinessNumber   string       `gorm:"column:business_number;type:text;not null;uniqueIndex:ux_partners_business_number" json:"businessNumber"`
	ContactEmail     string       `gorm:"column:contact_email;type:text;not null" json:"contactEmail"`
	ContactName      string       `gorm:"column:contact_name;type:text;not null" json:"contactName"`
	Status           Status       `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	SettlementFrozen bool         `gorm:"column:settlement_frozen;not null;default:false" json:"settlementFrozen"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Partner) TableName() string { return "partners" }
