package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() attributiondomain.Repository {
	return &repo{}
}

func (r *repo) InsertConversion(ctx context.Context, db *gorm.DB, conversion *attributiondomain.Conversion) (bool, error) {
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "link_id"}, {Name: "subject"}},
			DoNothing: true,
		}).
		Create(conversion)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindConversion(ctx context.Context, db *gorm.DB, linkID snowflake.ID, subject string) (*attributiondomain.Conversion, error) {
	var conversion attributiondomain.Conversion
	err := db.WithContext(ctx).
		First(&conversion, "link_id = ? AND subject = ?", linkID, subject).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conversion, nil
}

func (r *repo) TouchFingerprint(ctx context.Context, db *gorm.DB, fp *attributiondomain.ClickFingerprint, staleBefore time.Time) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "fingerprint"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"link_id":       fp.LinkID,
				"first_seen_at": fp.FirstSeenAt,
			}),
			// An existing row inside the window keeps first touch; only a
			// row the window has already expired is replaced.
			Where: clause.Where{Exprs: []clause.Expression{
				gorm.Expr("click_fingerprints.first_seen_at < ?", staleBefore),
			}},
		}).
		Create(fp).Error
}

func (r *repo) FindFingerprint(ctx context.Context, db *gorm.DB, fingerprint string) (*attributiondomain.ClickFingerprint, error) {
	var fp attributiondomain.ClickFingerprint
	err := db.WithContext(ctx).First(&fp, "fingerprint = ?", fingerprint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fp, nil
}
