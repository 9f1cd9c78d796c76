package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *Link) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Link, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Link, error)
	IncrementClicks(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	// ListAnnotated returns the partner's links with per-link conversion
	// counts in a single grouped query.
	ListAnnotated(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, page pagination.Page) ([]AnnotatedLink, int64, error)
}
