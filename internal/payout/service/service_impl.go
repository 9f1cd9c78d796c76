package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	transitionDraftCreated = "draft_created"
	transitionApproved     = "approved"
	transitionPaid         = "paid"
	transitionCompensation = "compensation_created"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        payoutdomain.Repository
	PartnerRepo partnerdomain.Repository
	Audit       auditdomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        payoutdomain.Repository
	partnerRepo partnerdomain.Repository
	audit       auditdomain.Service
}

func New(p Params) payoutdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payout.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		partnerRepo: p.PartnerRepo,
		audit:       p.Audit,
	}
}

// CreateDraft claims the partner's unsettled conversions in the period and
// writes a DRAFT entry whose total is recomputed from the rows themselves,
// never accepted from the caller.
func (s *Service) CreateDraft(ctx context.Context, partnerID snowflake.ID, periodStart, periodEnd time.Time) (*payoutdomain.Entry, error) {
	if !periodEnd.After(periodStart) {
		return nil, payoutdomain.ErrInvalidPeriod
	}
	if err := s.checkPartner(ctx, partnerID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &payoutdomain.Entry{
		ID:          s.genID.Generate(),
		PartnerID:   partnerID,
		PeriodStart: periodStart.UTC(),
		PeriodEnd:   periodEnd.UTC(),
		Status:      payoutdomain.StatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, entry); err != nil {
			return err
		}

		claimed, err := s.repo.StampConversions(ctx, tx, entry.ID, partnerID, entry.PeriodStart, entry.PeriodEnd)
		if err != nil {
			return err
		}
		if claimed == 0 {
			return payoutdomain.ErrNoUnsettled
		}

		total, err := s.repo.SumCommission(ctx, tx, entry.ID)
		if err != nil {
			return err
		}
		entry.TotalCommission = total
		if err := tx.Model(entry).UpdateColumn("total_commission", total).Error; err != nil {
			return err
		}

		return s.seal(ctx, tx, entry, transitionDraftCreated)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("draft payout created",
		zap.String("payout_id", entry.ID.String()),
		zap.String("partner_id", partnerID.String()),
		zap.String("total_commission", entry.TotalCommission.StringFixed(2)),
	)
	return entry, nil
}

func (s *Service) Approve(ctx context.Context, id snowflake.ID) (*payoutdomain.Entry, error) {
	return s.transition(ctx, id, payoutdomain.StatusDraft, payoutdomain.StatusApproved, transitionApproved)
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) (*payoutdomain.Entry, error) {
	return s.transition(ctx, id, payoutdomain.StatusApproved, payoutdomain.StatusPaid, transitionPaid)
}

// transition advances the entry with a conditional update so that of two
// concurrent callers only one succeeds; the loser observes zero rows and
// reports INVALID_TRANSITION from the re-read state.
func (s *Service) transition(ctx context.Context, id snowflake.ID, from, to payoutdomain.Status, name string) (*payoutdomain.Entry, error) {
	current, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, payoutdomain.ErrNotFound
	}
	if err := s.checkPartner(ctx, current.PartnerID); err != nil {
		return nil, err
	}

	var entry *payoutdomain.Entry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.Transition(ctx, tx, id, from, to, s.clock.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return payoutdomain.ErrInvalidTransition
		}

		entry, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.seal(ctx, tx, entry, name)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("payout transitioned",
		zap.String("payout_id", id.String()),
		zap.String("status", string(to)),
	)
	return entry, nil
}

// CreateCompensation reverses settled amounts through a negative DRAFT entry
// instead of mutating the original; the correction flows through the same
// approval pipeline.
func (s *Service) CreateCompensation(ctx context.Context, req payoutdomain.CompensationRequest) (*payoutdomain.Entry, error) {
	original, err := s.repo.FindByID(ctx, s.db, req.EntryID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, payoutdomain.ErrNotFound
	}
	if err := s.checkPartner(ctx, original.PartnerID); err != nil {
		return nil, err
	}

	var entry *payoutdomain.Entry
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total, err := s.compensationTotal(ctx, tx, req)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		originalID := original.ID
		entry = &payoutdomain.Entry{
			ID:              s.genID.Generate(),
			PartnerID:       original.PartnerID,
			PeriodStart:     original.PeriodStart,
			PeriodEnd:       original.PeriodEnd,
			Status:          payoutdomain.StatusDraft,
			TotalCommission: total.Neg(),
			ReversesEntryID: &originalID,
			Reason:          req.Reason,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.Insert(ctx, tx, entry); err != nil {
			return err
		}

		return s.seal(ctx, tx, entry, transitionCompensation)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("compensating entry created",
		zap.String("payout_id", entry.ID.String()),
		zap.String("reverses", original.ID.String()),
		zap.String("total_commission", entry.TotalCommission.StringFixed(2)),
	)
	return entry, nil
}

func (s *Service) List(ctx context.Context, req payoutdomain.ListRequest) (payoutdomain.ListResponse, error) {
	page := req.Page.Normalize()
	entries, total, err := s.repo.List(ctx, s.db, req.PartnerID, page)
	if err != nil {
		return payoutdomain.ListResponse{}, err
	}
	return payoutdomain.ListResponse{
		PageInfo: pagination.NewPageInfo(page, total),
		Payouts:  entries,
	}, nil
}

func (s *Service) GetPartnerStats(ctx context.Context, partnerID snowflake.ID) (*payoutdomain.Stats, error) {
	return s.repo.PartnerStats(ctx, s.db, partnerID)
}

func (s *Service) compensationTotal(ctx context.Context, tx *gorm.DB, req payoutdomain.CompensationRequest) (decimal.Decimal, error) {
	if len(req.ConversionIDs) == 0 {
		return s.repo.SumCommission(ctx, tx, req.EntryID)
	}
	return s.repo.SumCommissionByIDs(ctx, tx, req.EntryID, req.ConversionIDs)
}

func (s *Service) checkPartner(ctx context.Context, partnerID snowflake.ID) error {
	partner, err := s.partnerRepo.FindByID(ctx, s.db, partnerID)
	if err != nil {
		return err
	}
	if partner == nil {
		return partnerdomain.ErrNotFound
	}
	if partner.SettlementFrozen {
		return payoutdomain.ErrSettlementFrozen
	}
	return nil
}

func (s *Service) seal(ctx context.Context, tx *gorm.DB, entry *payoutdomain.Entry, transition string) error {
	ids, err := s.repo.ConversionIDs(ctx, tx, entry.ID)
	if err != nil {
		return err
	}
	_, err = s.audit.Seal(ctx, tx, auditdomain.SealRequest{
		PartnerID:       entry.PartnerID,
		PayoutEntryID:   entry.ID,
		Status:          string(entry.Status),
		TotalCommission: entry.TotalCommission,
		ConversionIDs:   ids,
		Transition:      transition,
	})
	return err
}
