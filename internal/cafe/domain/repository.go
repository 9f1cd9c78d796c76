package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cafe *Cafe) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Cafe, error)
	List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, status Status, page pagination.Page) ([]Cafe, int64, error)
	Update(ctx context.Context, db *gorm.DB, cafe *Cafe) error
}
