package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func New(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("auditchain.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Seal(ctx context.Context, tx *gorm.DB, req auditdomain.SealRequest) (*auditdomain.Snapshot, error) {
	last, err := s.repo.Last(ctx, tx, req.PartnerID)
	if err != nil {
		return nil, err
	}

	seq := int64(0)
	prevHash := ""
	if last != nil {
		seq = last.Seq + 1
		prevHash = last.Hash
	}

	payload := canonicalize(req)
	snapshot := &auditdomain.Snapshot{
		ID:            s.genID.Generate(),
		PartnerID:     req.PartnerID,
		PayoutEntryID: req.PayoutEntryID,
		Seq:           seq,
		Transition:    req.Transition,
		Payload:       payload,
		Hash:          chainHash(payload, prevHash),
		PrevHash:      prevHash,
		CreatedAt:     s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, tx, snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// VerifyChain walks the partner's chain from genesis, recomputing every hash
// from its recorded inputs plus the previous hash. Any out-of-band edit to a
// stored snapshot shows up as the first index that fails to recompute.
func (s *Service) VerifyChain(ctx context.Context, partnerID snowflake.ID) (auditdomain.ChainReport, error) {
	snapshots, err := s.repo.ListBySeq(ctx, s.db, partnerID)
	if err != nil {
		return auditdomain.ChainReport{}, err
	}

	report := auditdomain.ChainReport{Valid: true, Length: len(snapshots), BrokenAt: -1}
	prevHash := ""
	for i, snapshot := range snapshots {
		if snapshot.PrevHash != prevHash || snapshot.Hash != chainHash(snapshot.Payload, prevHash) {
			report.Valid = false
			report.BrokenAt = i
			s.log.Error("audit chain broken",
				zap.String("partner_id", partnerID.String()),
				zap.Int("index", i),
			)
			return report, auditdomain.ErrChainBroken
		}
		prevHash = snapshot.Hash
	}

	return report, nil
}

// canonicalize produces a deterministic serialization of the sealed state:
// fixed field order, sorted conversion ids.
func canonicalize(req auditdomain.SealRequest) string {
	ids := make([]string, 0, len(req.ConversionIDs))
	for _, id := range req.ConversionIDs {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)

	return fmt.Sprintf("entry=%s|partner=%s|status=%s|total=%s|conversions=%s|transition=%s",
		req.PayoutEntryID.String(),
		req.PartnerID.String(),
		req.Status,
		req.TotalCommission.StringFixed(2),
		strings.Join(ids, ","),
		req.Transition,
	)
}

func chainHash(payload, prevHash string) string {
	sum := sha256.Sum256([]byte(payload + "|" + prevHash))
	return hex.EncodeToString(sum[:])
}
