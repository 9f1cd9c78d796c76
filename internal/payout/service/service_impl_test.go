package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	auditrepository "github.com/smallbiznis/cafelink/internal/auditchain/repository"
	auditservice "github.com/smallbiznis/cafelink/internal/auditchain/service"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/internal/clock"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	partnerrepository "github.com/smallbiznis/cafelink/internal/partner/repository"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	payoutrepository "github.com/smallbiznis/cafelink/internal/payout/repository"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock
	svc   payoutdomain.Service

	partner *partnerdomain.Partner
	cafe    *cafedomain.Cafe
	link    *referraldomain.Link

	periodStart time.Time
	periodEnd   time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&partnerdomain.Partner{},
		&cafedomain.Cafe{},
		&referraldomain.Link{},
		&attributiondomain.Conversion{},
		&payoutdomain.Entry{},
		&auditdomain.Snapshot{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	log := zap.NewNop()

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

	cafe := &cafedomain.Cafe{
		ID:             node.Generate(),
		PartnerID:      partner.ID,
		Name:           "Seongsu Main",
		CommissionRate: decimal.RequireFromString("0.05"),
		Status:         cafedomain.StatusActive,
	}
	require.NoError(t, db.Create(cafe).Error)

	link := &referraldomain.Link{
		ID:             node.Generate(),
		CafeID:         cafe.ID,
		Code:           "ab12cd34",
		DestinationURL: "https://order.example/seongsu",
		Status:         referraldomain.StatusActive,
	}
	require.NoError(t, db.Create(link).Error)

	audit := auditservice.New(auditservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fakeClock,
		Repo:  auditrepository.Provide(),
	})

	svc := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fakeClock,
		Repo:        payoutrepository.Provide(),
		PartnerRepo: partnerrepository.Provide(),
		Audit:       audit,
	})

	return &testEnv{
		db:          db,
		node:        node,
		clock:       fakeClock,
		svc:         svc,
		partner:     partner,
		cafe:        cafe,
		link:        link,
		periodStart: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		periodEnd:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (env *testEnv) addConversion(t *testing.T, subject, orderValue, commission string, at time.Time) *attributiondomain.Conversion {
	t.Helper()
	conv := &attributiondomain.Conversion{
		ID:         env.node.Generate(),
		LinkID:     env.link.ID,
		PartnerID:  env.partner.ID,
		Subject:    subject,
		OrderValue: decimal.RequireFromString(orderValue),
		Commission: decimal.RequireFromString(commission),
		CreatedAt:  at,
	}
	require.NoError(t, env.db.Create(conv).Error)
	return conv
}

func TestCreateDraft(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	inPeriod := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	env.addConversion(t, "sess-1001", "1000", "50.00", inPeriod)
	env.addConversion(t, "sess-1002", "400", "20.00", inPeriod)
	// Outside the period, must not be claimed.
	env.addConversion(t, "sess-old", "1000", "50.00", time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusDraft, entry.Status)
	assert.Equal(t, "70.00", entry.TotalCommission.StringFixed(2))

	var claimed int64
	require.NoError(t, env.db.Model(&attributiondomain.Conversion{}).
		Where("payout_entry_id = ?", entry.ID).Count(&claimed).Error)
	assert.Equal(t, int64(2), claimed)

	// The claimed rows are gone, a second draft has nothing to settle.
	_, err = env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	assert.ErrorIs(t, err, payoutdomain.ErrNoUnsettled)
}

func TestCreateDraft_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodEnd, env.periodStart)
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidPeriod)

	_, err = env.svc.CreateDraft(ctx, snowflake.ID(999), env.periodStart, env.periodEnd)
	assert.ErrorIs(t, err, partnerdomain.ErrNotFound)

	_, err = env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	assert.ErrorIs(t, err, payoutdomain.ErrNoUnsettled)
}

func TestLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)

	approved, err := env.svc.Approve(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)

	paid, err := env.svc.MarkPaid(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	// No transition out of PAID, and no skipping DRAFT -> PAID.
	_, err = env.svc.Approve(ctx, entry.ID)
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidTransition)
	_, err = env.svc.MarkPaid(ctx, entry.ID)
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidTransition)

	_, err = env.svc.Approve(ctx, snowflake.ID(999))
	assert.ErrorIs(t, err, payoutdomain.ErrNotFound)
}

func TestLifecycle_SkipApprovalRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)

	_, err = env.svc.MarkPaid(ctx, entry.ID)
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidTransition)
}

func TestCreateCompensation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	refunded := env.addConversion(t, "sess-1002", "400", "20.00", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))

	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, entry.ID)
	require.NoError(t, err)
	_, err = env.svc.MarkPaid(ctx, entry.ID)
	require.NoError(t, err)

	// Partial reversal: only the refunded conversion.
	comp, err := env.svc.CreateCompensation(ctx, payoutdomain.CompensationRequest{
		EntryID:       entry.ID,
		ConversionIDs: []snowflake.ID{refunded.ID},
		Reason:        "order refunded",
	})
	require.NoError(t, err)
	assert.Equal(t, payoutdomain.StatusDraft, comp.Status)
	assert.Equal(t, "-20.00", comp.TotalCommission.StringFixed(2))
	require.NotNil(t, comp.ReversesEntryID)
	assert.Equal(t, entry.ID, *comp.ReversesEntryID)

	// The original entry stays untouched.
	var original payoutdomain.Entry
	require.NoError(t, env.db.First(&original, "id = ?", entry.ID).Error)
	assert.Equal(t, payoutdomain.StatusPaid, original.Status)
	assert.Equal(t, "70.00", original.TotalCommission.StringFixed(2))

	// Full reversal when no conversion subset is given.
	full, err := env.svc.CreateCompensation(ctx, payoutdomain.CompensationRequest{
		EntryID: entry.ID,
		Reason:  "partner dispute",
	})
	require.NoError(t, err)
	assert.Equal(t, "-70.00", full.TotalCommission.StringFixed(2))

	_, err = env.svc.CreateCompensation(ctx, payoutdomain.CompensationRequest{EntryID: snowflake.ID(999)})
	assert.ErrorIs(t, err, payoutdomain.ErrNotFound)
}

func TestSettlementFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)

	require.NoError(t, env.db.Model(env.partner).Update("settlement_frozen", true).Error)

	_, err = env.svc.Approve(ctx, entry.ID)
	assert.ErrorIs(t, err, payoutdomain.ErrSettlementFrozen)
	_, err = env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	assert.ErrorIs(t, err, payoutdomain.ErrSettlementFrozen)
	_, err = env.svc.CreateCompensation(ctx, payoutdomain.CompensationRequest{EntryID: entry.ID})
	assert.ErrorIs(t, err, payoutdomain.ErrSettlementFrozen)
}

func TestTransitionsSealAuditSnapshots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)
	_, err = env.svc.Approve(ctx, entry.ID)
	require.NoError(t, err)
	_, err = env.svc.MarkPaid(ctx, entry.ID)
	require.NoError(t, err)

	var snapshots []auditdomain.Snapshot
	require.NoError(t, env.db.
		Where("partner_id = ?", env.partner.ID).
		Order("seq ASC").
		Find(&snapshots).Error)
	require.Len(t, snapshots, 3)
	assert.Empty(t, snapshots[0].PrevHash)
	assert.Equal(t, snapshots[0].Hash, snapshots[1].PrevHash)
	assert.Equal(t, snapshots[1].Hash, snapshots[2].PrevHash)
}

func TestGetPartnerStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	env.addConversion(t, "sess-1002", "400", "20.00", time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC))

	stats, err := env.svc.GetPartnerStats(ctx, env.partner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalCafes)
	assert.Equal(t, int64(1), stats.TotalLinks)
	assert.Equal(t, int64(2), stats.TotalConversions)
	assert.Equal(t, "70.00", stats.TotalCommission.StringFixed(2))
}

func TestListPayouts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addConversion(t, "sess-1001", "1000", "50.00", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	entry, err := env.svc.CreateDraft(ctx, env.partner.ID, env.periodStart, env.periodEnd)
	require.NoError(t, err)

	resp, err := env.svc.List(ctx, payoutdomain.ListRequest{PartnerID: env.partner.ID})
	require.NoError(t, err)
	require.Len(t, resp.Payouts, 1)
	assert.Equal(t, entry.ID, resp.Payouts[0].ID)
	assert.Equal(t, int64(1), resp.TotalCount)
}
