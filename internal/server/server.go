package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/cafelink/internal/apikey"
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
	"github.com/smallbiznis/cafelink/internal/attribution"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	"github.com/smallbiznis/cafelink/internal/auditchain"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	"github.com/smallbiznis/cafelink/internal/cafe"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/internal/config"
	"github.com/smallbiznis/cafelink/internal/extpost"
	extpostdomain "github.com/smallbiznis/cafelink/internal/extpost/domain"
	"github.com/smallbiznis/cafelink/internal/metrics"
	"github.com/smallbiznis/cafelink/internal/partner"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"github.com/smallbiznis/cafelink/internal/payout"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	"github.com/smallbiznis/cafelink/internal/ratelimit"
	"github.com/smallbiznis/cafelink/internal/referral"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"github.com/smallbiznis/cafelink/internal/scope"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	metrics.Module,
	ratelimit.Module,
	partner.Module,
	cafe.Module,
	referral.Module,
	attribution.Module,
	auditchain.Module,
	payout.Module,
	apikey.Module,
	extpost.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, reg *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log.Named("http")))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return r
}

func registerGin(log *zap.Logger, reg *prometheus.Registry) *gin.Engine {
	return NewEngine(log, reg)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	db     *gorm.DB

	partnerSvc     partnerdomain.Service
	cafeSvc        cafedomain.Service
	referralSvc    referraldomain.Service
	attributionSvc attributiondomain.Service
	payoutSvc      payoutdomain.Service
	auditSvc       auditdomain.Service
	apiKeySvc      apikeydomain.Service
	extPostSvc     extpostdomain.Service

	limiter ratelimit.Limiter
	metrics *metrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	Log *zap.Logger
	DB  *gorm.DB

	PartnerSvc     partnerdomain.Service
	CafeSvc        cafedomain.Service
	ReferralSvc    referraldomain.Service
	AttributionSvc attributiondomain.Service
	PayoutSvc      payoutdomain.Service
	AuditSvc       auditdomain.Service
	APIKeySvc      apikeydomain.Service
	ExtPostSvc     extpostdomain.Service

	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		db:             p.DB,
		partnerSvc:     p.PartnerSvc,
		cafeSvc:        p.CafeSvc,
		referralSvc:    p.ReferralSvc,
		attributionSvc: p.AttributionSvc,
		payoutSvc:      p.PayoutSvc,
		auditSvc:       p.AuditSvc,
		apiKeySvc:      p.APIKeySvc,
		extPostSvc:     p.ExtPostSvc,
		limiter:        p.Limiter,
		metrics:        p.Metrics,
	}

	svc.registerPublicRoutes()
	svc.registerPartnerRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerPublicRoutes() {
	s.engine.GET("/r/:code", s.Redirect)
}

func (s *Server) registerPartnerRoutes() {
	me := s.engine.Group("/me", s.APIKeyRequired(), s.RateLimit())

	me.GET("/cafes", s.RequireScope(scope.ScopeReadCafes), s.ListMyCafes)
	me.GET("/referral-links", s.RequireScope(scope.ScopeReadCafes), s.ListMyReferralLinks)
	me.GET("/payouts", s.RequireScope(scope.ScopeReadCafes), s.ListMyPayouts)
	me.GET("/stats", s.RequireScope(scope.ScopeReadStats), s.GetMyStats)
	me.POST("/external-posts/batch", s.RequireScope(scope.ScopeWritePosts), s.BatchUpsertExternalPosts)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.AdminRequired())

	admin.POST("/partners", s.CreatePartner)
	admin.GET("/partners/:id", s.GetPartner)
	admin.PATCH("/partners/:id/status", s.UpdatePartnerStatus)
	admin.GET("/partners/:id/audit/verify", s.VerifyAuditChain)

	admin.POST("/cafes", s.CreateCafe)
	admin.PATCH("/cafes/:id/status", s.UpdateCafeStatus)

	admin.POST("/links", s.CreateReferralLink)

	admin.POST("/api-keys", s.CreateAPIKey)
	admin.POST("/api-keys/:id/revoke", s.RevokeAPIKey)

	admin.POST("/payouts", s.CreatePayoutDraft)
	admin.POST("/payouts/:id/approve", s.ApprovePayout)
	admin.POST("/payouts/:id/paid", s.MarkPayoutPaid)
	admin.POST("/payouts/:id/compensate", s.CompensatePayout)

	// Conversion webhook shares the admin trust boundary; callers are
	// internal order systems, not partners.
	s.engine.POST("/conversions", s.AdminRequired(), s.RecordConversion)
}
