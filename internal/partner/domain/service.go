package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	OrgID          string `json:"orgId"`
	OrgName        string `json:"orgName"`
	BusinessNumber string `json:"businessNumber"`
	ContactEmail   string `json:"contactEmail"`
	ContactName    string `json:"contactName"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Partner, error)
	GetByID(ctx context.Context, id snowflake.ID) (*Partner, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) (*Partner, error)
	Freeze(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidFormat           = errors.New("INVALID_FORMAT")
	ErrDuplicateBusinessNumber = errors.New("DUPLICATE_BUSINESS_NUMBER")
	ErrInvalidStatus           = errors.New("INVALID_STATUS")
	ErrNotFound                = errors.New("PARTNER_NOT_FOUND")
	ErrNotActive               = errors.New("PARTNER_NOT_ACTIVE")
)
