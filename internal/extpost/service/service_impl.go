package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/internal/clock"
	"github.com/smallbiznis/cafelink/internal/extpost/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("extpost.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// BatchUpsert validates the whole batch before touching the database: one
// malformed item rejects the entire request so partners cannot end up with a
// half-applied submission.
func (s *Service) BatchUpsert(ctx context.Context, partnerID snowflake.ID, items []domain.PostInput) (*domain.BatchResult, error) {
	if len(items) == 0 {
		return nil, domain.ErrEmptyBatch
	}

	posts := make([]domain.ExternalPost, 0, len(items))
	urls := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		rawURL := strings.TrimSpace(item.URL)
		title := strings.TrimSpace(item.Title)
		if rawURL == "" || title == "" {
			return nil, domain.ErrInvalidPost
		}
		parsed, err := url.Parse(rawURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return nil, domain.ErrInvalidPost
		}
		if seen[rawURL] {
			// Same URL twice in one batch; last write would win anyway,
			// keep the first and skip the repeat.
			continue
		}
		seen[rawURL] = true

		posts = append(posts, domain.ExternalPost{
			ID:          s.genID.Generate(),
			PartnerID:   partnerID,
			URL:         rawURL,
			Title:       title,
			Author:      strings.TrimSpace(item.Author),
			PublishedAt: item.PublishedAt,
			Metadata:    datatypes.JSONMap(item.Metadata),
		})
		urls = append(urls, rawURL)
	}

	result := &domain.BatchResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.ExistingURLs(ctx, tx, partnerID, urls)
		if err != nil {
			return err
		}
		if err := s.repo.Upsert(ctx, tx, posts); err != nil {
			return err
		}
		for _, u := range urls {
			if existing[u] {
				result.Updated++
			} else {
				result.Created++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("external posts batch applied",
		zap.String("partner_id", partnerID.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, partnerID snowflake.ID) ([]domain.ExternalPost, error) {
	return s.repo.List(ctx, s.db, partnerID)
}
