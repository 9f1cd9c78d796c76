package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	// Last returns the highest-seq snapshot for the partner, nil at genesis.
	Last(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) (*Snapshot, error)
	ListBySeq(ctx context.Context, db *gorm.DB, partnerID snowflake.ID) ([]Snapshot, error)
}
