package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
)

type recordConversionRequest struct {
	Cookie     string          `json:"cookie"`
	SessionID  string          `json:"sessionId"`
	IP         string          `json:"ip"`
	UserAgent  string          `json:"userAgent"`
	OrderValue decimal.Decimal `json:"orderValue"`
}

// RecordConversion is the order-system webhook. Attribution is resolved
// cookie first, click fingerprint second; the write is idempotent so the
// caller may redeliver freely.
func (s *Server) RecordConversion(c *gin.Context) {
	var req recordConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	attr, err := s.attributionSvc.ResolveSubject(c.Request.Context(), attributiondomain.SubjectRequest{
		Cookie:    req.Cookie,
		SessionID: req.SessionID,
		IP:        req.IP,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.attributionSvc.RecordConversion(c.Request.Context(), attributiondomain.ConversionEvent{
		LinkID:     attr.LinkID,
		Subject:    attr.Subject,
		OrderValue: req.OrderValue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	outcome := "recorded"
	if result.Deduplicated {
		outcome = "deduplicated"
	}
	s.metrics.RecordConversion(outcome)

	respondOK(c, http.StatusOK, result)
}
