package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type ClickRequest struct {
	LinkID         snowflake.ID
	ExistingCookie string
	IP             string
	UserAgent      string
}

type ClickResult struct {
	// CookieValue is empty when an existing unexpired cookie wins first touch.
	CookieValue  string
	CookieMaxAge time.Duration
}

type SubjectRequest struct {
	Cookie    string
	SessionID string
	IP        string
	UserAgent string
}

// Attribution names the link credited for a conversion and the subject the
// idempotency key is derived from.
type Attribution struct {
	LinkID  snowflake.ID
	Subject string
}

type ConversionEvent struct {
	LinkID     snowflake.ID
	Subject    string
	OrderValue decimal.Decimal
}

type ConversionResult struct {
	Conversion *Conversion `json:"conversion"`
	// Deduplicated is true when the identical event had already been
	// recorded; the caller treats this as success.
	Deduplicated bool `json:"deduplicated"`
}

type Service interface {
	AttributeClick(ctx context.Context, req ClickRequest) (ClickResult, error)
	ResolveSubject(ctx context.Context, req SubjectRequest) (*Attribution, error)
	RecordConversion(ctx context.Context, event ConversionEvent) (*ConversionResult, error)
}

var (
	ErrNoAttribution     = errors.New("NO_ATTRIBUTION")
	ErrInvalidOrderValue = errors.New("INVALID_ORDER_VALUE")
)
