package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	codeBytes       = 4 // 8 hex chars
	codeMaxAttempts = 5
)

var oneHundred = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     referraldomain.Repository
	CafeRepo cafedomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     referraldomain.Repository
	cafeRepo cafedomain.Repository
}

func New(p Params) referraldomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("referral.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		cafeRepo: p.CafeRepo,
	}
}

func (s *Service) CreateLink(ctx context.Context, cafeID snowflake.ID, campaign referraldomain.Campaign) (*referraldomain.Link, error) {
	cafe, err := s.cafeRepo.FindByID(ctx, s.db, cafeID)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, cafedomain.ErrNotFound
	}
	if cafe.Status != cafedomain.StatusActive {
		return nil, cafedomain.ErrNotActive
	}

	destination := strings.TrimSpace(campaign.DestinationURL)
	parsed, err := url.Parse(destination)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, referraldomain.ErrInvalidURL
	}

	now := s.clock.Now()
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code, err := newCode()
		if err != nil {
			return nil, err
		}

		existing, err := s.repo.FindByCode(ctx, s.db, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}

		link := &referraldomain.Link{
			ID:             s.genID.Generate(),
			CafeID:         cafe.ID,
			Code:           code,
			DestinationURL: destination,
			UTMCampaign:    strings.TrimSpace(campaign.UTMCampaign),
			UTMMedium:      strings.TrimSpace(campaign.UTMMedium),
			UTMSource:      strings.TrimSpace(campaign.UTMSource),
			Status:         referraldomain.StatusActive,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Insert(ctx, s.db, link); err != nil {
			return nil, err
		}

		s.log.Info("referral link created",
			zap.String("link_id", link.ID.String()),
			zap.String("code", link.Code),
		)
		return link, nil
	}

	return nil, referraldomain.ErrCodeExhausted
}

func (s *Service) Resolve(ctx context.Context, code string) (*referraldomain.Link, error) {
	link, err := s.repo.FindByCode(ctx, s.db, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, referraldomain.ErrNotFound
	}
	if link.Status != referraldomain.StatusActive {
		return nil, referraldomain.ErrNotActive
	}
	return link, nil
}

func (s *Service) RecordClick(ctx context.Context, linkID snowflake.ID) error {
	return s.repo.IncrementClicks(ctx, s.db, linkID)
}

func (s *Service) ListByPartner(ctx context.Context, req referraldomain.ListRequest) (referraldomain.ListResponse, error) {
	page := req.Page.Normalize()
	links, total, err := s.repo.ListAnnotated(ctx, s.db, req.PartnerID, page)
	if err != nil {
		return referraldomain.ListResponse{}, err
	}

	for i := range links {
		links[i].ConversionRate = conversionRate(links[i].ConversionsCount, links[i].Clicks)
	}

	return referraldomain.ListResponse{
		PageInfo: pagination.NewPageInfo(page, total),
		Links:    links,
	}, nil
}

// conversionRate is conversions/clicks*100, zero when there are no clicks.
func conversionRate(conversions, clicks int64) decimal.Decimal {
	if clicks <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(conversions).
		Div(decimal.NewFromInt(clicks)).
		Mul(oneHundred).
		Round(2)
}

func newCode() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
