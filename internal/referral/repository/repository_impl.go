package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() referraldomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *referraldomain.Link) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*referraldomain.Link, error) {
	var link referraldomain.Link
	err := db.WithContext(ctx).First(&link, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*referraldomain.Link, error) {
	var link referraldomain.Link
	err := db.WithContext(ctx).First(&link, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) IncrementClicks(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).
		Model(&referraldomain.Link{}).
		Where("id = ?", id).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error
}

func (r *repo) ListAnnotated(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, page pagination.Page) ([]referraldomain.AnnotatedLink, int64, error) {
	base := db.WithContext(ctx).
		Table("referral_links AS l").
		Joins("JOIN cafes c ON c.id = l.cafe_id").
		Where("c.partner_id = ?", partnerID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []referraldomain.AnnotatedLink
	err := base.Session(&gorm.Session{}).
		Select("l.*, COALESCE(cv.cnt, 0) AS conversions_count").
		Joins("LEFT JOIN (SELECT link_id, COUNT(*) AS cnt FROM referral_conversions GROUP BY link_id) cv ON cv.link_id = l.id").
		Order("l.created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
