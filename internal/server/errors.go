package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	extpostdomain "github.com/smallbiznis/cafelink/internal/extpost/domain"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
	"github.com/smallbiznis/cafelink/internal/scope"
	"gorm.io/gorm"
)

// Sentinels raised by the HTTP layer itself rather than a domain service.
var (
	ErrInvalidRequest   = errors.New("INVALID_REQUEST")
	ErrUnauthorized     = errors.New("INVALID_KEY")
	ErrPermissionDenied = errors.New("PERMISSION_DENIED")
	ErrRateLimited      = errors.New("RATE_LIMITED")
	ErrAdminForbidden   = errors.New("ADMIN_TOKEN_REQUIRED")
)

type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, response{Success: true, Data: data})
}

// ErrorHandlingMiddleware renders the last gin error through the shared
// envelope once the handler chain is done.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, code := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, response{Success: false, Error: code})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError translates domain sentinels into HTTP status plus the stable
// error code clients switch on. Unknown errors stay opaque.
func mapError(err error) (int, string) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, apikeydomain.ErrInvalidKey),
		errors.Is(err, apikeydomain.ErrKeyExpired):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrAdminForbidden):
		return http.StatusForbidden, err.Error()
	case isNotFoundError(err):
		return http.StatusNotFound, err.Error()
	case isConflictError(err):
		return http.StatusConflict, err.Error()
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, partnerdomain.ErrInvalidFormat),
		errors.Is(err, partnerdomain.ErrInvalidStatus),
		errors.Is(err, cafedomain.ErrInvalidCommissionRate),
		errors.Is(err, cafedomain.ErrInvalidName),
		errors.Is(err, cafedomain.ErrInvalidStatus),
		errors.Is(err, referraldomain.ErrInvalidURL),
		errors.Is(err, attributiondomain.ErrInvalidOrderValue),
		errors.Is(err, attributiondomain.ErrNoAttribution),
		errors.Is(err, extpostdomain.ErrInvalidPost),
		errors.Is(err, extpostdomain.ErrEmptyBatch),
		errors.Is(err, payoutdomain.ErrInvalidPeriod),
		errors.Is(err, apikeydomain.ErrMissingScopes),
		errors.Is(err, apikeydomain.ErrInvalidExpiry),
		errors.Is(err, scope.ErrInvalidScope):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, partnerdomain.ErrNotFound),
		errors.Is(err, cafedomain.ErrNotFound),
		errors.Is(err, referraldomain.ErrNotFound),
		errors.Is(err, payoutdomain.ErrNotFound),
		errors.Is(err, apikeydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, partnerdomain.ErrDuplicateBusinessNumber),
		errors.Is(err, partnerdomain.ErrNotActive),
		errors.Is(err, cafedomain.ErrNotActive),
		errors.Is(err, referraldomain.ErrNotActive),
		errors.Is(err, payoutdomain.ErrInvalidTransition),
		errors.Is(err, payoutdomain.ErrNoUnsettled),
		errors.Is(err, payoutdomain.ErrSettlementFrozen),
		errors.Is(err, auditdomain.ErrChainBroken):
		return true
	default:
		return false
	}
}
