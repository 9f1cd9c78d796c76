package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"github.com/smallbiznis/cafelink/internal/partner/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) partnerdomain.Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&partnerdomain.Partner{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func validCreateRequest() partnerdomain.CreateRequest {
	return partnerdomain.CreateRequest{
		OrgID:          "org-cafelink-001",
		OrgName:        "Seongsu Roasters",
		BusinessNumber: "123-45-67890",
		ContactEmail:   "owner@seongsu.example",
		ContactName:    "Kim Jiwoo",
	}
}

func TestCreatePartner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	partner, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)
	assert.NotZero(t, partner.ID)
	assert.Equal(t, partnerdomain.StatusActive, partner.Status)
	assert.False(t, partner.SettlementFrozen)
}

func TestCreatePartner_InvalidBusinessNumber(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, businessNumber := range []string{
		"12345-67890",
		"123-456-7890",
		"abc-45-67890",
		"123-45-678901",
		"",
	} {
		req := validCreateRequest()
		req.BusinessNumber = businessNumber
		_, err := svc.Create(ctx, req)
		assert.ErrorIs(t, err, partnerdomain.ErrInvalidFormat, "business number %q", businessNumber)
	}
}

func TestCreatePartner_DuplicateBusinessNumber(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	dup := validCreateRequest()
	dup.OrgID = "org-cafelink-002"
	_, err = svc.Create(ctx, dup)
	assert.ErrorIs(t, err, partnerdomain.ErrDuplicateBusinessNumber)
}

func TestUpdatePartnerStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	partner, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, partner.ID, partnerdomain.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, partnerdomain.StatusSuspended, updated.Status)

	// Idempotent when the target status already holds.
	again, err := svc.UpdateStatus(ctx, partner.ID, partnerdomain.StatusSuspended)
	require.NoError(t, err)
	assert.Equal(t, partnerdomain.StatusSuspended, again.Status)

	_, err = svc.UpdateStatus(ctx, partner.ID, partnerdomain.Status("RETIRED"))
	assert.ErrorIs(t, err, partnerdomain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, snowflake.ID(999), partnerdomain.StatusActive)
	assert.ErrorIs(t, err, partnerdomain.ErrNotFound)
}

func TestFreezePartner(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	partner, err := svc.Create(ctx, validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Freeze(ctx, partner.ID))

	frozen, err := svc.GetByID(ctx, partner.ID)
	require.NoError(t, err)
	assert.True(t, frozen.SettlementFrozen)
}
