package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() partnerdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, partner *partnerdomain.Partner) error {
	return db.WithContext(ctx).Create(partner).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*partnerdomain.Partner, error) {
	var partner partnerdomain.Partner
	err := db.WithContext(ctx).First(&partner, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repo) FindByBusinessNumber(ctx context.Context, db *gorm.DB, businessNumber string) (*partnerdomain.Partner, error) {
	var partner partnerdomain.Partner
	err := db.WithContext(ctx).First(&partner, "business_number = ?", businessNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, partner *partnerdomain.Partner) error {
	return db.WithContext(ctx).Save(partner).Error
}
