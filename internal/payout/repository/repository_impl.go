package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() payoutdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *payoutdomain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*payoutdomain.Entry, error) {
	var entry payoutdomain.Entry
	err := db.WithContext(ctx).First(&entry, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to payoutdomain.Status, at time.Time) (int64, error) {
	updates := map[string]any{
		"status":     to,
		"updated_at": at,
	}
	switch to {
	case payoutdomain.StatusApproved:
		updates["approved_at"] = at
	case payoutdomain.StatusPaid:
		updates["paid_at"] = at
	}

	res := db.WithContext(ctx).
		Model(&payoutdomain.Entry{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, page pagination.Page) ([]payoutdomain.Entry, int64, error) {
	query := db.WithContext(ctx).
		Model(&payoutdomain.Entry{}).
		Where("partner_id = ?", partnerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []payoutdomain.Entry
	err := query.
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *repo) StampConversions(ctx context.Context, db *gorm.DB, entryID, partnerID snowflake.ID, periodStart, periodEnd time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Model(&attributiondomain.Conversion{}).
		Where("partner_id = ? AND payout_entry_id IS NULL AND created_at >= ? AND created_at < ?",
			partnerID, periodStart, periodEnd).
		UpdateColumn("payout_entry_id", entryID)
	return res.RowsAffected, res.Error
}

func (r *repo) ConversionIDs(ctx context.Context, db *gorm.DB, entryID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).
		Model(&attributiondomain.Conversion{}).
		Where("payout_entry_id = ?", entryID).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) SumCommission(ctx context.Context, db *gorm.DB, entryID snowflake.ID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := db.WithContext(ctx).
		Model(&attributiondomain.Conversion{}).
		Select("COALESCE(SUM(commission), 0) AS total").
		Where("payout_entry_id = ?", entryID).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

func (r *repo) SumCommissionByIDs(ctx context.Context, db *gorm.DB, entryID snowflake.ID, ids []snowflake.ID) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	err := db.WithContext(ctx).
		Model(&attributiondomain.Conversion{}).
		Select("COALESCE(SUM(commission), 0) AS total").
		Where("payout_entry_id = ? AND id IN ?", entryID, ids).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}

// PartnerStats is deliberately a single aggregation query over
// cafes -> referral_links -> referral_conversions; the per-row fan-out form
// would scale its query count with partner size.
func (r *repo) PartnerStats(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*payoutdomain.Stats, error) {
	var row struct {
		TotalCafes       int64           `gorm:"column:total_cafes"`
		TotalLinks       int64           `gorm:"column:total_links"`
		TotalConversions int64           `gorm:"column:total_conversions"`
		TotalCommission  decimal.Decimal `gorm:"column:total_commission"`
	}

	err := db.WithContext(ctx).Raw(`
		SELECT
			COUNT(DISTINCT c.id)  AS total_cafes,
			COUNT(DISTINCT l.id)  AS total_links,
			COUNT(rc.id)          AS total_conversions,
			COALESCE(SUM(rc.commission), 0) AS total_commission
		FROM cafes c
		LEFT JOIN referral_links l ON l.cafe_id = c.id
		LEFT JOIN referral_conversions rc ON rc.link_id = l.id
		WHERE c.partner_id = ?`,
		partnerID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &payoutdomain.Stats{
		TotalCafes:       row.TotalCafes,
		TotalLinks:       row.TotalLinks,
		TotalConversions: row.TotalConversions,
		TotalCommission:  row.TotalCommission,
	}, nil
}
