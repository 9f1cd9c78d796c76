package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Upsert(ctx context.Context, db *gorm.DB, posts []ExternalPost) error
	ExistingURLs(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, urls []string) (map[string]bool, error)
	List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]ExternalPost, error)
}
