package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Codec    *attributiondomain.CookieCodec
	Repo     attributiondomain.Repository
	LinkRepo referraldomain.Repository
	CafeRepo cafedomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	codec    *attributiondomain.CookieCodec
	repo     attributiondomain.Repository
	linkRepo referraldomain.Repository
	cafeRepo cafedomain.Repository
}

func New(p Params) attributiondomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("attribution.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		codec:    p.Codec,
		repo:     p.Repo,
		linkRepo: p.LinkRepo,
		cafeRepo: p.CafeRepo,
	}
}

// AttributeClick applies first-touch semantics: an unexpired cookie naming any
// link is never overwritten by a later click. The fingerprint fallback is
// recorded the same way; once a fingerprint's first touch ages past the
// window the next click re-establishes it, mirroring cookie replacement.
func (s *Service) AttributeClick(ctx context.Context, req attributiondomain.ClickRequest) (attributiondomain.ClickResult, error) {
	now := s.clock.Now()

	if err := s.repo.TouchFingerprint(ctx, s.db, &attributiondomain.ClickFingerprint{
		Fingerprint: attributiondomain.Fingerprint(req.IP, req.UserAgent),
		LinkID:      req.LinkID,
		FirstSeenAt: now,
	}, now.Add(-attributiondomain.AttributionWindow)); err != nil {
		return attributiondomain.ClickResult{}, err
	}

	if req.ExistingCookie != "" {
		if _, _, err := s.codec.Decode(req.ExistingCookie, now); err == nil {
			// First touch already recorded; leave the cookie alone.
			return attributiondomain.ClickResult{}, nil
		}
	}

	return attributiondomain.ClickResult{
		CookieValue:  s.codec.Encode(req.LinkID, now),
		CookieMaxAge: attributiondomain.AttributionWindow,
	}, nil
}

// ResolveSubject resolves the attributed link by (a) the cookie if present
// and unexpired, then (b) the click-time fingerprint, which respects the same
// window. The subject is the session identity when known, the fingerprint
// otherwise.
func (s *Service) ResolveSubject(ctx context.Context, req attributiondomain.SubjectRequest) (*attributiondomain.Attribution, error) {
	now := s.clock.Now()
	fingerprint := attributiondomain.Fingerprint(req.IP, req.UserAgent)

	subject := strings.TrimSpace(req.SessionID)
	if subject == "" {
		subject = fingerprint
	}

	if req.Cookie != "" {
		if linkID, _, err := s.codec.Decode(req.Cookie, now); err == nil {
			return &attributiondomain.Attribution{LinkID: linkID, Subject: subject}, nil
		}
	}

	fp, err := s.repo.FindFingerprint(ctx, s.db, fingerprint)
	if err != nil {
		return nil, err
	}
	if fp != nil && now.Sub(fp.FirstSeenAt) <= attributiondomain.AttributionWindow {
		return &attributiondomain.Attribution{LinkID: fp.LinkID, Subject: subject}, nil
	}

	return nil, attributiondomain.ErrNoAttribution
}

// RecordConversion computes the commission and inserts the conversion in a
// single transaction. A duplicate (link, subject) event is absorbed as a
// successful no-op, which is what makes the operation safely retryable.
func (s *Service) RecordConversion(ctx context.Context, event attributiondomain.ConversionEvent) (*attributiondomain.ConversionResult, error) {
	if event.OrderValue.IsNegative() || event.OrderValue.IsZero() {
		return nil, attributiondomain.ErrInvalidOrderValue
	}
	subject := strings.TrimSpace(event.Subject)
	if subject == "" {
		return nil, attributiondomain.ErrNoAttribution
	}

	var result attributiondomain.ConversionResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.linkRepo.FindByID(ctx, tx, event.LinkID)
		if err != nil {
			return err
		}
		if link == nil {
			return referraldomain.ErrNotFound
		}
		if link.Status != referraldomain.StatusActive {
			return referraldomain.ErrNotActive
		}

		cafe, err := s.cafeRepo.FindByID(ctx, tx, link.CafeID)
		if err != nil {
			return err
		}
		if cafe == nil {
			return cafedomain.ErrNotFound
		}

		// Banker's rounding to the currency minor unit.
		commission := event.OrderValue.Mul(cafe.CommissionRate).RoundBank(2)

		conversion := &attributiondomain.Conversion{
			ID:         s.genID.Generate(),
			LinkID:     link.ID,
			PartnerID:  cafe.PartnerID,
			Subject:    subject,
			OrderValue: event.OrderValue,
			Commission: commission,
			CreatedAt:  s.clock.Now(),
		}

		inserted, err := s.repo.InsertConversion(ctx, tx, conversion)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := s.repo.FindConversion(ctx, tx, link.ID, subject)
			if err != nil {
				return err
			}
			result = attributiondomain.ConversionResult{Conversion: existing, Deduplicated: true}
			return nil
		}

		result = attributiondomain.ConversionResult{Conversion: conversion}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.Deduplicated {
		s.log.Info("conversion recorded",
			zap.String("link_id", event.LinkID.String()),
			zap.String("commission", result.Conversion.Commission.String()),
		)
	}
	return &result, nil
}
