package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ExternalPost is a partner-submitted mention of the service on an outside
// site (blog review, news article). Rows are keyed by (partner_id, url) so
// re-submitting the same URL refreshes metadata instead of duplicating.
type ExternalPost struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	PartnerID   snowflake.ID `gorm:"column:partner_id;not null;uniqueIndex:ux_external_posts_partner_url" json:"partnerId"`
	URL         string       `gorm:"type:text;not null;uniqueIndex:ux_external_posts_partner_url" json:"url"`
	Title       string       `gorm:"type:text;not null" json:"title"`
	Author      string       `gorm:"type:text" json:"author,omitempty"`
	PublishedAt *time.Time   `gorm:"column:published_at" json:"publishedAt,omitempty"`
	// Metadata holds platform-specific fields the partner sends along
	// (view counts, board name) that we store but never interpret.
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (ExternalPost) TableName() string { return "external_posts" }
