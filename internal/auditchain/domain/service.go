package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SealRequest struct {
	PartnerID       snowflake.ID
	PayoutEntryID   snowflake.ID
	Status          string
	TotalCommission decimal.Decimal
	ConversionIDs   []snowflake.ID
	Transition      string
}

// ChainReport is the result of walking a partner's chain from genesis.
type ChainReport struct {
	Valid  bool `json:"valid"`
	Length int  `json:"length"`
	// BrokenAt is the zero-based index of the first snapshot whose stored
	// hash does not match its recomputed inputs; -1 when the chain holds.
	BrokenAt int `json:"brokenAt"`
}

type Service interface {
	// Seal must run inside the payout transition's transaction so the
	// snapshot and the transition commit or roll back together.
	Seal(ctx context.Context, tx *gorm.DB, req SealRequest) (*Snapshot, error)
	VerifyChain(ctx context.Context, partnerID snowflake.ID) (ChainReport, error)
}

var ErrChainBroken = errors.New("CHAIN_BROKEN")
