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

// Link is a trackable short code bound to a cafe and campaign metadata.
type Link struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	CafeID         snowflake.ID `gorm:"column:cafe_id;not null;index" json:"cafeId"`
	Code           string       `gorm:"type:text;not null;uniqueIndex:ux_referral_links_code" json:"code"`
	DestinationURL string       `gorm:"column:destination_url;type:text;not null" json:"destinationUrl"`
	UTMCampaign    string       `gorm:"column:utm_campaign;type:text" json:"utmCampaign"`
	UTMMedium      string       `gorm:"column:utm_medium;type:text" json:"utmMedium"`
	UTMSource      string       `gorm:"column:utm_source;type:text" json:"utmSource"`
	Clicks         int64        `gorm:"not null;default:0" json:"clicks"`
	Status         Status       `gorm:"type:text;not null;default:'ACTIVE'" json:"status"`
	CreatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt      time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Link) TableName() string { return "referral_links" }

// AnnotatedLink is a link with its read-side conversion stats.
type AnnotatedLink struct {
	Link
	ConversionsCount int64           `json:"conversionsCount"`
	ConversionRate   decimal.Decimal `json:"conversionRate"`
}
