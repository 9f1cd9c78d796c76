package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
)

type CompensationRequest struct {
	EntryID snowflake.ID
	// ConversionIDs limits the reversal to a subset; empty reverses the
	// whole entry.
	ConversionIDs []snowflake.ID
	Reason        string
}

type ListRequest struct {
	PartnerID snowflake.ID
	Page      pagination.Page
}

type ListResponse struct {
	pagination.PageInfo
	Payouts []Entry `json:"payouts"`
}

type Service interface {
	CreateDraft(ctx context.Context, partnerID snowflake.ID, periodStart, periodEnd time.Time) (*Entry, error)
	Approve(ctx context.Context, id snowflake.ID) (*Entry, error)
	MarkPaid(ctx context.Context, id snowflake.ID) (*Entry, error)
	CreateCompensation(ctx context.Context, req CompensationRequest) (*Entry, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetPartnerStats(ctx context.Context, partnerID snowflake.ID) (*Stats, error)
}

var (
	ErrNotFound          = errors.New("PAYOUT_NOT_FOUND")
	ErrInvalidTransition = errors.New("INVALID_TRANSITION")
	ErrInvalidPeriod     = errors.New("INVALID_PERIOD")
	ErrNoUnsettled       = errors.New("NO_UNSETTLED_CONVERSIONS")
	ErrSettlementFrozen  = errors.New("SETTLEMENT_FROZEN")
)
