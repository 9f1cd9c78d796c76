package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertConversion inserts unless the (link_id, subject) key already
	// exists; inserted reports whether a row was written.
	InsertConversion(ctx context.Context, db *gorm.DB, conversion *Conversion) (inserted bool, err error)
	FindConversion(ctx context.Context, db *gorm.DB, linkID snowflake.ID, subject string) (*Conversion, error)
	// TouchFingerprint inserts the fingerprint row unless one already exists
	// (first touch wins). A row whose first_seen_at is before staleBefore is
	// outside the attribution window and gets replaced by the new click.
	TouchFingerprint(ctx context.Context, db *gorm.DB, fp *ClickFingerprint, staleBefore time.Time) error
	FindFingerprint(ctx context.Context, db *gorm.DB, fingerprint string) (*ClickFingerprint, error)
}
