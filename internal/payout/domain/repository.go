package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Entry, error)
	// Transition performs the optimistic, conditional status update
	// (WHERE status = from); the returned count is zero when a concurrent
	// caller won the race or the entry is in another state.
	Transition(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to Status, at time.Time) (int64, error)
	List(ctx context.Context, db *gorm.DB, partnerID snowflake.ID, page pagination.Page) ([]Entry, int64, error)

	// StampConversions claims the partner's unsettled conversions in the
	// period for the given entry.
	StampConversions(ctx context.Context, db *gorm.DB, entryID, partnerID snowflake.ID, periodStart, periodEnd time.Time) (int64, error)
	ConversionIDs(ctx context.Context, db *gorm.DB, entryID snowflake.ID) ([]snowflake.ID, error)
	SumCommission(ctx context.Context, db *gorm.DB, entryID snowflake.ID) (decimal.Decimal, error)
	SumCommissionByIDs(ctx context.Context, db *gorm.DB, entryID snowflake.ID, ids []snowflake.ID) (decimal.Decimal, error)

	// PartnerStats answers the roll-up with exactly one aggregation query.
	PartnerStats(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*Stats, error)
}
