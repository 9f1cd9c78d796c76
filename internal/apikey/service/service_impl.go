package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/internal/apikey/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"github.com/smallbiznis/cafelink/internal/scope"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	rawKeyPrefix     = "cl_live_"
	keySecretBytes   = 16
	keyDisplayPrefix = 12

	defaultRateLimit = 60
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Clock   clock.Clock
	GenID   *snowflake.Node
	Repo    domain.Repository
	Partner partnerdomain.Repository
}

type service struct {
	db      *gorm.DB
	log     *zap.Logger
	clock   clock.Clock
	genID   *snowflake.Node
	repo    domain.Repository
	partner partnerdomain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:      p.DB,
		log:     p.Log.Named("apikey.service"),
		clock:   p.Clock,
		genID:   p.GenID,
		repo:    p.Repo,
		partner: p.Partner,
	}
}

// Generate mints a new raw credential for an active partner. The raw key is
// present only in the returned SecretResponse; the row stores its hash and a
// 12 character display prefix.
func (s *service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.SecretResponse, error) {
	scopes := scope.Normalize(req.Scopes)
	if len(scopes) == 0 {
		return nil, domain.ErrMissingScopes
	}
	if err := scope.Validate(scopes); err != nil {
		return nil, err
	}
	if req.ExpiresInDays < 0 {
		return nil, domain.ErrInvalidExpiry
	}

	partner, err := s.partner.FindByID(ctx, s.db, req.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, partnerdomain.ErrNotFound
	}
	if partner.Status != partnerdomain.StatusActive {
		return nil, partnerdomain.ErrNotActive
	}

	raw, err := newRawKey()
	if err != nil {
		return nil, err
	}

	rateLimit := req.RateLimit
	if rateLimit <= 0 {
		rateLimit = defaultRateLimit
	}

	key := domain.APIKey{
		ID:        s.genID.Generate(),
		PartnerID: req.PartnerID,
		KeyPrefix: raw[:keyDisplayPrefix],
		KeyHash:   domain.HashAPIKey(raw),
		KeyType:   "live",
		Scopes:    scope.Strings(scopes),
		RateLimit: rateLimit,
		IsActive:  true,
	}
	if req.ExpiresInDays > 0 {
		expiresAt := s.clock.Now().UTC().AddDate(0, 0, req.ExpiresInDays)
		key.ExpiresAt = &expiresAt
	}

	if err := s.repo.Insert(ctx, s.db, &key); err != nil {
		return nil, err
	}

	s.log.Info("api key generated",
		zap.String("key_id", key.ID.String()),
		zap.String("partner_id", key.PartnerID.String()),
		zap.String("key_prefix", key.KeyPrefix),
	)

	return &domain.SecretResponse{Key: key, APIKey: raw}, nil
}

// Authenticate resolves a raw credential to its stored key. Lookup is by
// hash, with a constant-time recheck of the digest before trusting the row.
func (s *service) Authenticate(ctx context.Context, rawKey string) (*domain.APIKey, error) {
	if rawKey == "" {
		return nil, domain.ErrInvalidKey
	}

	hash := domain.HashAPIKey(rawKey)
	key, err := s.repo.FindByHash(ctx, s.db, hash)
	if err != nil {
		return nil, err
	}
	if key == nil || !key.IsActive {
		return nil, domain.ErrInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(hash), []byte(key.KeyHash)) != 1 {
		return nil, domain.ErrInvalidKey
	}
	if key.ExpiresAt != nil && !s.clock.Now().Before(*key.ExpiresAt) {
		return nil, domain.ErrKeyExpired
	}

	// Best effort; authentication does not fail on a bookkeeping write.
	if err := s.repo.TouchLastUsed(ctx, s.db, key.ID); err != nil {
		s.log.Warn("touch last_used_at", zap.Error(err), zap.String("key_id", key.ID.String()))
	}

	return key, nil
}

func (s *service) List(ctx context.Context, partnerID snowflake.ID) ([]domain.APIKey, error) {
	return s.repo.List(ctx, s.db, partnerID)
}

func (s *service) Revoke(ctx context.Context, id snowflake.ID) error {
	key, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if key == nil {
		return domain.ErrNotFound
	}
	if !key.IsActive {
		return nil
	}
	key.IsActive = false
	return s.repo.Update(ctx, s.db, key)
}

func newRawKey() (string, error) {
	buf := make([]byte, keySecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return rawKeyPrefix + hex.EncodeToString(buf), nil
}
