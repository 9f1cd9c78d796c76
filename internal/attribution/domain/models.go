package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// AttributionWindow bounds how long a click keeps credit for a conversion.
// It applies to the signed cookie and to the fingerprint fallback alike.
const AttributionWindow = 7 * 24 * time.Hour

// Conversion is the attribution record. The unique index over
// (link_id, subject) is the idempotency key: a duplicate submission is
// absorbed, never double charged.
type Conversion struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	LinkID        snowflake.ID    `gorm:"column:link_id;not null;uniqueIndex:ux_referral_conversions_link_subject,priority:1" json:"linkId"`
	PartnerID     snowflake.ID    `gorm:"column:partner_id;not null;index" json:"partnerId"`
	Subject       string          `gorm:"type:text;not null;uniqueIndex:ux_referral_conversions_link_subject,priority:2" json:"subject"`
	OrderValue    decimal.Decimal `gorm:"column:order_value;type:numeric(12,2);not null" json:"orderValue"`
	Commission    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"commission"`
	PayoutEntryID *snowflake.ID   `gorm:"column:payout_entry_id;index" json:"payoutEntryId,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Conversion) TableName() string { return "referral_conversions" }

// ClickFingerprint is the cookieless fallback: the first link a fingerprint
// touched, recorded at click time. First touch wins within the window, so the
// row is never overwritten while fresh; once it expires the next click
// replaces it.
type ClickFingerprint struct {
	Fingerprint string       `gorm:"primaryKey;type:text" json:"fingerprint"`
	LinkID      snowflake.ID `gorm:"column:link_id;not null" json:"linkId"`
	FirstSeenAt time.Time    `gorm:"column:first_seen_at;not null" json:"firstSeenAt"`
}

func (ClickFingerprint) TableName() string { return "click_fingerprints" }
