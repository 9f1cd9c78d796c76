package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() auditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snapshot *auditdomain.Snapshot) error {
	return db.WithContext(ctx).Create(snapshot).Error
}

func (r *repo) Last(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*auditdomain.Snapshot, error) {
	var snapshot auditdomain.Snapshot
	err := db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("seq DESC").
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *repo) ListBySeq(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]auditdomain.Snapshot, error) {
	var snapshots []auditdomain.Snapshot
	err := db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("seq ASC").
		Find(&snapshots).Error
	if err != nil {
		return nil, err
	}
	return snapshots, nil
}
