package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/internal/extpost/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct{}

func Provide() domain.Repository {
	return &repository{}
}

func (r *repository) Upsert(ctx context.Context, db *gorm.DB, posts []domain.ExternalPost) error {
	if len(posts) == 0 {
		return nil
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}, {Name: "url"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "author", "published_at", "metadata", "updated_at"}),
		}).
		Create(&posts).Error
}

func (r *repository) ExistingURLs(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, urls []string) (map[string]bool, error) {
	var found []string
	err := db.WithContext(ctx).
		Model(&domain.ExternalPost{}).
		Where("partner_id = ? AND url IN ?", partnerID, urls).
		Pluck("url", &found).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(found))
	for _, u := range found {
		out[u] = true
	}
	return out, nil
}

func (r *repository) List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]domain.ExternalPost, error) {
	var posts []domain.ExternalPost
	err := db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}
