package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
	apikeyrepository "github.com/smallbiznis/cafelink/internal/apikey/repository"
	apikeyservice "github.com/smallbiznis/cafelink/internal/apikey/service"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	attributionrepository "github.com/smallbiznis/cafelink/internal/attribution/repository"
	attributionservice "github.com/smallbiznis/cafelink/internal/attribution/service"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	auditrepository "github.com/smallbiznis/cafelink/internal/auditchain/repository"
	auditservice "github.com/smallbiznis/cafelink/internal/auditchain/service"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	caferepository "github.com/smallbiznis/cafelink/internal/cafe/repository"
	cafeservice "github.com/smallbiznis/cafelink/internal/cafe/service"
	"github.com/smallbiznis/cafelink/internal/clock"
	"github.com/smallbiznis/cafelink/internal/config"
	extpostdomain "github.com/smallbiznis/cafelink/internal/extpost/domain"
	extpostrepository "github.com/smallbiznis/cafelink/internal/extpost/repository"
	extpostservice "github.com/smallbiznis/cafelink/internal/extpost/service"
	"github.com/smallbiznis/cafelink/internal/metrics"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	partnerrepository "github.com/smallbiznis/cafelink/internal/partner/repository"
	partnerservice "github.com/smallbiznis/cafelink/internal/partner/service"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	payoutrepository "github.com/smallbiznis/cafelink/internal/payout/repository"
	payoutservice "github.com/smallbiznis/cafelink/internal/payout/service"
	"github.com/smallbiznis/cafelink/internal/ratelimit"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	referralrepository "github.com/smallbiznis/cafelink/internal/referral/repository"
	referralservice "github.com/smallbiznis/cafelink/internal/referral/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testAdminToken = "test-admin-token"

type testServer struct {
	srv   *Server
	db    *gorm.DB
	node  *snowflake.Node
	clock *clock.FakeClock

	partner *partnerdomain.Partner
	cafe    *cafedomain.Cafe
	link    *referraldomain.Link
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&partnerdomain.Partner{},
		&cafedomain.Cafe{},
		&referraldomain.Link{},
		&attributiondomain.Conversion{},
		&attributiondomain.ClickFingerprint{},
		&payoutdomain.Entry{},
		&auditdomain.Snapshot{},
		&apikeydomain.APIKey{},
		&extpostdomain.ExternalPost{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	log := zap.NewNop()
	fakeClock := clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{
		AdminToken:   testAdminToken,
		CookieSecret: "test-secret",
	}
	codec := attributiondomain.NewCookieCodec(cfg.CookieSecret)

	partnerRepo := partnerrepository.Provide()
	cafeRepo := caferepository.Provide()
	referralRepo := referralrepository.Provide()

	partnerSvc := partnerservice.New(partnerservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Repo: partnerRepo,
	})
	cafeSvc := cafeservice.New(cafeservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock,
		Repo: cafeRepo, PartnerRepo: partnerRepo,
	})
	referralSvc := referralservice.New(referralservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock,
		Repo: referralRepo, CafeRepo: cafeRepo,
	})
	attributionSvc := attributionservice.New(attributionservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Codec: codec,
		Repo: attributionrepository.Provide(), LinkRepo: referralRepo, CafeRepo: cafeRepo,
	})
	auditSvc := auditservice.New(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Repo: auditrepository.Provide(),
	})
	payoutSvc := payoutservice.New(payoutservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock,
		Repo: payoutrepository.Provide(), PartnerRepo: partnerRepo, Audit: auditSvc,
	})
	apiKeySvc := apikeyservice.New(apikeyservice.Params{
		DB: db, Log: log, Clock: fakeClock, GenID: node,
		Repo: apikeyrepository.Provide(), Partner: partnerRepo,
	})
	extPostSvc := extpostservice.New(extpostservice.Params{
		DB: db, Log: log, GenID: node, Clock: fakeClock, Repo: extpostrepository.Provide(),
	})

	reg := prometheus.NewRegistry()
	srv := NewServer(ServerParams{
		Gin: NewEngine(log, reg),
		Cfg: cfg,
		Log: log,
		DB:  db,

		PartnerSvc:     partnerSvc,
		CafeSvc:        cafeSvc,
		ReferralSvc:    referralSvc,
		AttributionSvc: attributionSvc,
		PayoutSvc:      payoutSvc,
		AuditSvc:       auditSvc,
		APIKeySvc:      apiKeySvc,
		ExtPostSvc:     extPostSvc,

		Limiter: ratelimit.NewLocalWindow(fakeClock),
		Metrics: metrics.New(reg),
	})

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

	return &testServer{
		srv:     srv,
		db:      db,
		node:    node,
		clock:   fakeClock,
		partner: partner,
		cafe:    cafe,
		link:    link,
	}
}

func (ts *testServer) issueKey(t *testing.T, scopes []string, rateLimit int) string {
	t.Helper()
	resp, err := ts.srv.apiKeySvc.Generate(context.Background(), apikeydomain.GenerateRequest{
		PartnerID: ts.partner.ID,
		Scopes:    scopes,
		RateLimit: rateLimit,
	})
	require.NoError(t, err)
	return resp.APIKey
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response {
	t.Helper()
	var env response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIKeyGuard(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/me/cafes", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_KEY", env.Error)

	w = ts.do(t, http.MethodGet, "/me/cafes", nil, map[string]string{
		HeaderAPIKey: "cl_live_0000000000000000000000000000dead",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	key := ts.issueKey(t, []string{"read:cafes"}, 0)
	w = ts.do(t, http.MethodGet, "/me/cafes", nil, map[string]string{HeaderAPIKey: key})
	assert.Equal(t, http.StatusOK, w.Code)
	env = decodeEnvelope(t, w)
	assert.True(t, env.Success)
}

func TestScopeGuard(t *testing.T) {
	ts := newTestServer(t)
	key := ts.issueKey(t, []string{"read:cafes"}, 0)

	w := ts.do(t, http.MethodGet, "/me/stats", nil, map[string]string{HeaderAPIKey: key})
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "PERMISSION_DENIED", env.Error)

	statsKey := ts.issueKey(t, []string{"read:stats"}, 0)
	w = ts.do(t, http.MethodGet, "/me/stats", nil, map[string]string{HeaderAPIKey: statsKey})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitGuard(t *testing.T) {
	ts := newTestServer(t)
	key := ts.issueKey(t, []string{"read:cafes"}, 1)

	w := ts.do(t, http.MethodGet, "/me/cafes", nil, map[string]string{HeaderAPIKey: key})
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/me/cafes", nil, map[string]string{HeaderAPIKey: key})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	env := decodeEnvelope(t, w)
	assert.Equal(t, "RATE_LIMITED", env.Error)

	ts.clock.Advance(ratelimit.Window + time.Second)
	w = ts.do(t, http.MethodGet, "/me/cafes", nil, map[string]string{HeaderAPIKey: key})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGuard(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/admin/partners", partnerdomain.CreateRequest{
		OrgID:          "org-cafelink-002",
		OrgName:        "Mangwon Beans",
		BusinessNumber: "987-65-43210",
		ContactEmail:   "owner@mangwon.example",
		ContactName:    "Lee Haru",
	}, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "ADMIN_TOKEN_REQUIRED", env.Error)

	w = ts.do(t, http.MethodPost, "/admin/partners", partnerdomain.CreateRequest{
		OrgID:          "org-cafelink-002",
		OrgName:        "Mangwon Beans",
		BusinessNumber: "987-65-43210",
		ContactEmail:   "owner@mangwon.example",
		ContactName:    "Lee Haru",
	}, map[string]string{HeaderAdminToken: testAdminToken})
	assert.Equal(t, http.StatusCreated, w.Code)
	env = decodeEnvelope(t, w)
	assert.True(t, env.Success)
}

func TestAdminGuard_EmptyConfiguredToken(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.cfg.AdminToken = ""

	// With no token configured the admin surface stays closed.
	w := ts.do(t, http.MethodPost, "/admin/partners", partnerdomain.CreateRequest{}, map[string]string{
		HeaderAdminToken: "",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePartner_InvalidBusinessNumber(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/admin/partners", partnerdomain.CreateRequest{
		OrgID:          "org-cafelink-003",
		OrgName:        "Broken",
		BusinessNumber: "12-345-6789",
		ContactEmail:   "x@example.com",
		ContactName:    "X",
	}, map[string]string{HeaderAdminToken: testAdminToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "INVALID_FORMAT", env.Error)
}

func TestRedirect(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/r/ab12cd34", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://order.example/seongsu", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	var attr *http.Cookie
	for _, c := range cookies {
		if c.Name == attributiondomain.CookieName {
			attr = c
		}
	}
	require.NotNil(t, attr)
	assert.NotEmpty(t, attr.Value)
	assert.True(t, attr.HttpOnly)

	w = ts.do(t, http.MethodGet, "/r/missing0", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestConversionWebhook(t *testing.T) {
	ts := newTestServer(t)

	redirect := ts.do(t, http.MethodGet, "/r/ab12cd34", nil, nil)
	require.Equal(t, http.StatusFound, redirect.Code)
	var cookie string
	for _, c := range redirect.Result().Cookies() {
		if c.Name == attributiondomain.CookieName {
			cookie = c.Value
		}
	}
	require.NotEmpty(t, cookie)

	body := map[string]interface{}{
		"cookie":     cookie,
		"sessionId":  "sess-1001",
		"orderValue": "1000",
	}

	w := ts.do(t, http.MethodPost, "/conversions", body, map[string]string{HeaderAdminToken: testAdminToken})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.True(t, env.Success)

	data := env.Data.(map[string]interface{})
	assert.Equal(t, false, data["deduplicated"])

	// Webhook redelivery is absorbed.
	w = ts.do(t, http.MethodPost, "/conversions", body, map[string]string{HeaderAdminToken: testAdminToken})
	require.Equal(t, http.StatusOK, w.Code)
	data = decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, data["deduplicated"])

	// No cookie and no known fingerprint: nothing to attribute.
	w = ts.do(t, http.MethodPost, "/conversions", map[string]interface{}{
		"sessionId":  "sess-2002",
		"ip":         "198.51.100.1",
		"userAgent":  "curl/8.0",
		"orderValue": "500",
	}, map[string]string{HeaderAdminToken: testAdminToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NO_ATTRIBUTION", decodeEnvelope(t, w).Error)
}

func TestExternalPostsBatch(t *testing.T) {
	ts := newTestServer(t)
	key := ts.issueKey(t, []string{"write:posts"}, 0)

	w := ts.do(t, http.MethodPost, "/me/external-posts/batch", map[string]interface{}{
		"posts": []map[string]string{
			{"url": "https://blog.example/review-1", "title": "Best cafe in Seongsu"},
		},
	}, map[string]string{HeaderAPIKey: key})
	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["created"])

	w = ts.do(t, http.MethodPost, "/me/external-posts/batch", map[string]interface{}{
		"posts": []map[string]string{
			{"url": "ftp://blog.example/bad", "title": "nope"},
		},
	}, map[string]string{HeaderAPIKey: key})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_POST", decodeEnvelope(t, w).Error)
}

func TestPayoutAdminFlow(t *testing.T) {
	ts := newTestServer(t)
	admin := map[string]string{HeaderAdminToken: testAdminToken}

	require.NoError(t, ts.db.Create(&attributiondomain.Conversion{
		ID:         ts.node.Generate(),
		LinkID:     ts.link.ID,
		PartnerID:  ts.partner.ID,
		Subject:    "sess-1001",
		OrderValue: decimal.RequireFromString("1000"),
		Commission: decimal.RequireFromString("50.00"),
		CreatedAt:  time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}).Error)

	w := ts.do(t, http.MethodPost, "/admin/payouts", map[string]interface{}{
		"partnerId":   ts.partner.ID.String(),
		"periodStart": "2026-02-01T00:00:00Z",
		"periodEnd":   "2026-03-01T00:00:00Z",
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeEnvelope(t, w).Data.(map[string]interface{})
	entryID := data["id"].(string)
	assert.Equal(t, "DRAFT", data["status"])

	w = ts.do(t, http.MethodPost, "/admin/payouts/"+entryID+"/approve", nil, admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodPost, "/admin/payouts/"+entryID+"/paid", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	// Replayed approval of a paid entry is a state conflict.
	w = ts.do(t, http.MethodPost, "/admin/payouts/"+entryID+"/approve", nil, admin)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeEnvelope(t, w).Error)

	// The audit chain sealed along the way verifies clean.
	w = ts.do(t, http.MethodGet, "/admin/partners/"+ts.partner.ID.String()+"/audit/verify", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	report := decodeEnvelope(t, w).Data.(map[string]interface{})
	assert.Equal(t, true, report["valid"])
}
