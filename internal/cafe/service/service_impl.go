package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        cafedomain.Repository
	PartnerRepo partnerdomain.Repository
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        cafedomain.Repository
	partnerRepo partnerdomain.Repository
}

func New(p Params) cafedomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("cafe.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		partnerRepo: p.PartnerRepo,
	}
}

func (s *Service) Create(ctx context.Context, req cafedomain.CreateRequest) (*cafedomain.Cafe, error) {
	partner, err := s.partnerRepo.FindByID(ctx, s.db, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}
	if partner.Status != partnerdomain.StatusActive {
		return nil, partnerdomain.ErrNotActive
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, cafedomain.ErrInvalidName
	}
	if !cafedomain.ValidRate(req.CommissionRate) {
		return nil, cafedomain.ErrInvalidCommissionRate
	}

	now := s.clock.Now()
	cafe := &cafedomain.Cafe{
		ID:             s.genID.Generate(),
		PartnerID:      partner.ID,
		Name:           name,
		CommissionRate: req.CommissionRate,
		Status:         cafedomain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, cafe); err != nil {
		return nil, err
	}

	s.log.Info("cafe created",
		zap.String("cafe_id", cafe.ID.String()),
		zap.String("partner_id", partner.ID.String()),
		zap.String("commission_rate", cafe.CommissionRate.String()),
	)
	return cafe, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*cafedomain.Cafe, error) {
	cafe, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, cafedomain.ErrNotFound
	}
	return cafe, nil
}

func (s *Service) List(ctx context.Context, req cafedomain.ListRequest) (cafedomain.ListResponse, error) {
	if req.Status != "" && !req.Status.Valid() {
		return cafedomain.ListResponse{}, cafedomain.ErrInvalidStatus
	}

	page := req.Page.Normalize()
	cafes, total, err := s.repo.List(ctx, s.db, req.PartnerID, req.Status, page)
	if err != nil {
		return cafedomain.ListResponse{}, err
	}

	return cafedomain.ListResponse{
		PageInfo: pagination.NewPageInfo(page, total),
		Cafes:    cafes,
	}, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status cafedomain.Status) (*cafedomain.Cafe, error) {
	if !status.Valid() {
		return nil, cafedomain.ErrInvalidStatus
	}

	cafe, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if cafe == nil {
		return nil, cafedomain.ErrNotFound
	}
	if cafe.Status == status {
		return cafe, nil
	}

	cafe.Status = status
	cafe.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, cafe); err != nil {
		return nil, err
	}
	return cafe, nil
}
