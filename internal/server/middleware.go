package server

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
	"github.com/smallbiznis/cafelink/internal/scope"
	"go.uber.org/zap"
)

const (
	// HeaderAPIKey carries the partner credential on /me routes.
	HeaderAPIKey = "x-api-key"
	// HeaderAdminToken gates the internal registry and settlement routes.
	HeaderAdminToken = "x-admin-token"

	contextAPIKey = "api_key"
)

// APIKeyRequired authenticates requests with the x-api-key header. Partner
// identity is derived solely from the api_keys table.
func (s *Server) APIKeyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderAPIKey))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		key, err := s.apiKeySvc.Authenticate(c.Request.Context(), raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(contextAPIKey, key)
		c.Next()
	}
}

func (s *Server) apiKey(c *gin.Context) *apikeydomain.APIKey {
	value, ok := c.Get(contextAPIKey)
	if !ok {
		return nil
	}
	key, _ := value.(*apikeydomain.APIKey)
	return key
}

// RequireScope gates a route on one of the key's granted scopes.
func (s *Server) RequireScope(want scope.Scope) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := s.apiKey(c)
		if key == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		if !scope.Contains(key.Scopes, want) {
			AbortWithError(c, ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

// RateLimit enforces the key's per-minute budget. Runs after APIKeyRequired.
func (s *Server) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := s.apiKey(c)
		if key == nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		result, err := s.limiter.Allow(c.Request.Context(), key.ID.String(), key.RateLimit)
		if err != nil {
			// Fail open: a limiter outage must not take the API down.
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		s.metrics.RecordRateLimit(result.Allowed)
		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(result.RetryAfter/time.Second)))
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}

// AdminRequired gates internal routes with the static admin token.
func (s *Server) AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(HeaderAdminToken))
		if s.cfg.AdminToken == "" ||
			subtle.ConstantTimeCompare([]byte(token), []byte(s.cfg.AdminToken)) != 1 {
			AbortWithError(c, ErrAdminForbidden)
			return
		}
		c.Next()
	}
}

// requestLogger tags every request with an id and emits one structured line
// per request.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		log.Info("http request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
