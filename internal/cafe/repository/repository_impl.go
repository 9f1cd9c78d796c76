package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() cafedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cafe *cafedomain.Cafe) error {
	return db.WithContext(ctx).Create(cafe).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*cafedomain.Cafe, error) {
	var cafe cafedomain.Cafe
	err := db.WithContext(ctx).First(&cafe, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cafe, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, status cafedomain.Status, page pagination.Page) ([]cafedomain.Cafe, int64, error) {
	query := db.WithContext(ctx).Model(&cafedomain.Cafe{}).Where("partner_id = ?", partnerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cafes []cafedomain.Cafe
	err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&cafes).Error
	if err != nil {
		return nil, 0, err
	}
	return cafes, total, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, cafe *cafedomain.Cafe) error {
	return db.WithContext(ctx).Save(cafe).Error
}
