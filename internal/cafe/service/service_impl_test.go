package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	caferepository "github.com/smallbiznis/cafelink/internal/cafe/repository"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	partnerrepository "github.com/smallbiznis/cafelink/internal/partner/repository"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db      *gorm.DB
	node    *snowflake.Node
	svc     cafedomain.Service
	partner *partnerdomain.Partner
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&partnerdomain.Partner{}, &cafedomain.Cafe{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	partner := &partnerdomain.Partner{
		ID:             node.Generate(),
		OrgID:          "org-cafelink-001",
		OrgName:        "Seongsu Roasters",
		BusinessNumber: "123-45-67890",
		ContactEmail:   "owner@seongsu.example",
		ContactName:    "Kim Jiwoo",
		Status:         partnerdomain.StatusActive,
	}
	require.NoError(t, db.Create(partner).Error)

	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:        caferepository.Provide(),
		PartnerRepo: partnerrepository.Provide(),
	})

	return &testEnv{db: db, node: node, svc: svc, partner: partner}
}

func TestCreateCafe_RateBounds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, rate := range []string{"1.0", "0.00001", "0", "-0.05", "0.99999"} {
		_, err := env.svc.Create(ctx, cafedomain.CreateRequest{
			PartnerID:      env.partner.ID,
			Name:           "Mokdong Branch",
			CommissionRate: decimal.RequireFromString(rate),
		})
		assert.ErrorIs(t, err, cafedomain.ErrInvalidCommissionRate, "rate %s", rate)
	}
}

func TestCreateCafe_RateTrailingZeros(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// "0.05000" is exactly 0.05; the representation must not be rejected.
	cafe, err := env.svc.Create(ctx, cafedomain.CreateRequest{
		PartnerID:      env.partner.ID,
		Name:           "Padded Rate",
		CommissionRate: decimal.RequireFromString("0.05000"),
	})
	require.NoError(t, err)
	assert.True(t, cafe.CommissionRate.Equal(decimal.RequireFromString("0.05")))

	_, err = env.svc.Create(ctx, cafedomain.CreateRequest{
		PartnerID:      env.partner.ID,
		Name:           "Too Precise",
		CommissionRate: decimal.RequireFromString("0.00015"),
	})
	assert.ErrorIs(t, err, cafedomain.ErrInvalidCommissionRate)
}

func TestCreateCafe_RateStoredExactly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, rate := range []string{"0.05", "0.0275", "0.0001", "0.9999"} {
		cafe, err := env.svc.Create(ctx, cafedomain.CreateRequest{
			PartnerID:      env.partner.ID,
			Name:           "Branch " + rate,
			CommissionRate: decimal.RequireFromString(rate),
		})
		require.NoError(t, err, "rate %s", rate)

		stored, err := env.svc.GetByID(ctx, cafe.ID)
		require.NoError(t, err)
		assert.True(t, stored.CommissionRate.Equal(decimal.RequireFromString(rate)),
			"rate %s stored as %s", rate, stored.CommissionRate)
	}
}

func TestCreateCafe_PartnerChecks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Create(ctx, cafedomain.CreateRequest{
		PartnerID:      snowflake.ID(999),
		Name:           "Orphan",
		CommissionRate: decimal.RequireFromString("0.05"),
	})
	assert.ErrorIs(t, err, partnerdomain.ErrNotFound)

	require.NoError(t, env.db.Model(env.partner).Update("status", partnerdomain.StatusSuspended).Error)
	_, err = env.svc.Create(ctx, cafedomain.CreateRequest{
		PartnerID:      env.partner.ID,
		Name:           "Suspended",
		CommissionRate: decimal.RequireFromString("0.05"),
	})
	assert.ErrorIs(t, err, partnerdomain.ErrNotActive)
}

func TestListCafes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i, rate := range []string{"0.05", "0.0275", "0.10"} {
		_, err := env.svc.Create(ctx, cafedomain.CreateRequest{
			PartnerID:      env.partner.ID,
			Name:           "Branch " + string(rune('A'+i)),
			CommissionRate: decimal.RequireFromString(rate),
		})
		require.NoError(t, err)
	}

	resp, err := env.svc.List(ctx, cafedomain.ListRequest{
		PartnerID: env.partner.ID,
		Page:      pagination.Page{Page: 1, PageSize: 2},
	})
	require.NoError(t, err)
	assert.Len(t, resp.Cafes, 2)
	assert.Equal(t, int64(3), resp.TotalCount)

	resp, err = env.svc.List(ctx, cafedomain.ListRequest{
		PartnerID: env.partner.ID,
		Status:    cafedomain.StatusInactive,
		Page:      pagination.Page{Page: 1, PageSize: 20},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Cafes)
	assert.Equal(t, int64(0), resp.TotalCount)
}
