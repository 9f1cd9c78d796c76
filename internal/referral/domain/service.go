package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
)

type Campaign struct {
	DestinationURL string `json:"destinationUrl"`
	UTMCampaign    string `json:"utmCampaign"`
	UTMMedium      string `json:"utmMedium"`
	UTMSource      string `json:"utmSource"`
}

type ListRequest struct {
	PartnerID snowflake.ID
	Page      pagination.Page
}

type ListResponse struct {
	pagination.PageInfo
	Links []AnnotatedLink `json:"links"`
}

type Service interface {
	CreateLink(ctx context.Context, cafeID snowflake.ID, campaign Campaign) (*Link, error)
	// Resolve is a pure lookup; it never touches the click counter.
	Resolve(ctx context.Context, code string) (*Link, error)
	// RecordClick increments the click counter. It is decoupled from Resolve
	// so redirect latency is not tied to write contention.
	RecordClick(ctx context.Context, linkID snowflake.ID) error
	ListByPartner(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrNotFound      = errors.New("LINK_NOT_FOUND")
	ErrNotActive     = errors.New("LINK_NOT_ACTIVE")
	ErrInvalidURL    = errors.New("INVALID_DESTINATION_URL")
	ErrCodeExhausted = errors.New("CODE_SPACE_EXHAUSTED")
)
