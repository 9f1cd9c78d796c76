package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type PostInput struct {
	URL         string                 `json:"url"`
	Title       string                 `json:"title"`
	Author      string                 `json:"author,omitempty"`
	PublishedAt *time.Time             `json:"publishedAt,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// BatchResult reports how the batch landed. The batch is atomic: either
// every item is applied or none are.
type BatchResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

type Service interface {
	BatchUpsert(ctx context.Context, partnerID snowflake.ID, items []PostInput) (*BatchResult, error)
	List(ctx context.Context, partnerID snowflake.ID) ([]ExternalPost, error)
}

var (
	ErrInvalidPost = errors.New("INVALID_POST")
	ErrEmptyBatch  = errors.New("EMPTY_BATCH")
)
