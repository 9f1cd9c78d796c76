package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
)

type CreateRequest struct {
	PartnerID      snowflake.ID
	Name           string
	CommissionRate decimal.Decimal
}

type ListRequest struct {
	PartnerID snowflake.ID
	Status    Status
	Page      pagination.Page
}

type ListResponse struct {
	pagination.PageInfo
	Cafes []Cafe `json:"cafes"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Cafe, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Cafe, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) (*Cafe, error)
}

var (
	ErrInvalidCommissionRate = errors.New("INVALID_COMMISSION_RATE")
	ErrInvalidName           = errors.New("INVALID_NAME")
	ErrInvalidStatus         = errors.New("INVALID_STATUS")
	ErrNotFound              = errors.New("CAFE_NOT_FOUND")
	ErrNotActive             = errors.New("CAFE_NOT_ACTIVE")
)

var (
	// MinCommissionRate and MaxCommissionRate bound the per-location rate to
	// [0.0001, 0.9999] (0.01% .. 99.99%).
	MinCommissionRate = decimal.RequireFromString("0.0001")
	MaxCommissionRate = decimal.RequireFromString("0.9999")
)

// ValidRate reports whether the rate is inside the allowed bounds and carries
// no more than 4 fractional digits. Trailing zeros are fine: "0.05000" is the
// same value as 0.05.
func ValidRate(rate decimal.Decimal) bool {
	if rate.LessThan(MinCommissionRate) || rate.GreaterThan(MaxCommissionRate) {
		return false
	}
	return rate.Equal(rate.Round(4))
}
