package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/lib/pq"
)

// APIKey stores hashed API credentials scoped to a partner. Only the SHA-256
// hash and a non-secret display prefix are persisted; the raw credential is
// returned once at generation and is unrecoverable thereafter.
type APIKey struct {
	ID         snowflake.ID   `gorm:"primaryKey" json:"id"`
	PartnerID  snowflake.ID   `gorm:"column:partner_id;not null;index" json:"partnerId"`
	KeyPrefix  string         `gorm:"column:key_prefix;type:text;not null" json:"keyPrefix"`
	KeyHash    string         `gorm:"column:key_hash;type:text;not null;uniqueIndex:ux_api_keys_key_hash" json:"-"`
	KeyType    string         `gorm:"column:key_type;type:text;not null;default:'live'" json:"keyType"`
	Scopes     pq.StringArray `gorm:"type:text[];not null" json:"scopes"`
	RateLimit  int            `gorm:"column:rate_limit;not null;default:60" json:"rateLimit"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true" json:"isActive"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	LastUsedAt *time.Time     `gorm:"column:last_used_at" json:"lastUsedAt,omitempty"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (APIKey) TableName() string { return "api_keys" }
