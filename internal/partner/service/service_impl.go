package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	pkgdb "github.com/smallbiznis/cafelink/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// businessNumberRe matches the NNN-NN-NNNNN business registration format.
var businessNumberRe = regexp.MustCompile(`^\d{3}-\d{2}-\d{5}$`)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  partnerdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  partnerdomain.Repository
}

func New(p Params) partnerdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("partner.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req partnerdomain.CreateRequest) (*partnerdomain.Partner, error) {
	businessNumber := strings.TrimSpace(req.BusinessNumber)
	if !businessNumberRe.MatchString(businessNumber) {
		return nil, partnerdomain.ErrInvalidFormat
	}

	orgID := strings.TrimSpace(req.OrgID)
	orgName := strings.TrimSpace(req.OrgName)
	if orgID == "" || orgName == "" {
		return nil, partnerdomain.ErrInvalidFormat
	}

	existing, err := s.repo.FindByBusinessNumber(ctx, s.db, businessNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, partnerdomain.ErrDuplicateBusinessNumber
	}

	now := s.clock.Now()
	partner := &partnerdomain.Partner{
		ID:             s.genID.Generate(),
		OrgID:          orgID,
		OrgName:        orgName,
		BusinessNumber: businessNumber,
		ContactEmail:   strings.TrimSpace(req.ContactEmail),
		ContactName:    strings.TrimSpace(req.ContactName),
		Status:         partnerdomain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Insert(ctx, s.db, partner); err != nil {
		// Concurrent registration with the same business number loses the
		// unique-index race rather than the pre-check.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, partnerdomain.ErrDuplicateBusinessNumber
		}
		return nil, err
	}

	s.log.Info("partner registered",
		zap.String("partner_id", partner.ID.String()),
		zap.String("org_id", partner.OrgID),
	)
	return partner, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*partnerdomain.Partner, error) {
	partner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}
	return partner, nil
}

// UpdateStatus performs an unconditional status write. Repeating the current
// status is a no-op, not an error.
func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status partnerdomain.Status) (*partnerdomain.Partner, error) {
	if !status.Valid() {
		return nil, partnerdomain.ErrInvalidStatus
	}

	partner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}

	if partner.Status == status {
		return partner, nil
	}

	partner.Status = status
	partner.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, partner); err != nil {
		return nil, err
	}

	s.log.Info("partner status updated",
		zap.String("partner_id", partner.ID.String()),
		zap.String("status", string(status)),
	)
	return partner, nil
}

// Freeze halts the partner's settlement pipeline after an audit chain break.
func (s *Service) Freeze(ctx context.Context, id snowflake.ID) error {
	partner, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if partner == nil {
		return partnerdomain.ErrNotFound
	}
	if partner.SettlementFrozen {
		return nil
	}

	partner.SettlementFrozen = true
	partner.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, partner); err != nil {
		return err
	}

	s.log.Warn("partner settlement frozen", zap.String("partner_id", partner.ID.String()))
	return nil
}
