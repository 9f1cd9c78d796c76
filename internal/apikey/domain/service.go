package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type GenerateRequest struct {
	PartnerID     snowflake.ID
	Scopes        []string
	ExpiresInDays int
	RateLimit     int
}

// SecretResponse carries the raw key exactly once.
type SecretResponse struct {
	Key    APIKey `json:"key"`
	APIKey string `json:"apiKey"`
}

type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (*SecretResponse, error)
	Authenticate(ctx context.Context, rawKey string) (*APIKey, error)
	List(ctx context.Context, partnerID snowflake.ID) ([]APIKey, error)
	Revoke(ctx context.Context, id snowflake.ID) error
}

var (
	ErrInvalidKey    = errors.New("INVALID_KEY")
	ErrKeyExpired    = errors.New("KEY_EXPIRED")
	ErrInvalidExpiry = errors.New("INVALID_EXPIRY")
	ErrMissingScopes = errors.New("MISSING_SCOPES")
	ErrNotFound      = errors.New("KEY_NOT_FOUND")
)
