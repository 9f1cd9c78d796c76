package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
)

type createPayoutDraftRequest struct {
	PartnerID   string `json:"partnerId"`
	PeriodStart string `json:"periodStart"`
	PeriodEnd   string `json:"periodEnd"`
}

func (s *Server) CreatePayoutDraft(c *gin.Context) {
	var req createPayoutDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partnerID, err := parseID(req.PartnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	periodStart, err := parseTime(req.PeriodStart)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	periodEnd, err := parseTime(req.PeriodEnd)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.payoutSvc.CreateDraft(c.Request.Context(), partnerID, periodStart, periodEnd)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordPayoutTransition("draft_created")
	respondOK(c, http.StatusCreated, entry)
}

func (s *Server) ApprovePayout(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.payoutSvc.Approve(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordPayoutTransition("approved")
	respondOK(c, http.StatusOK, entry)
}

func (s *Server) MarkPayoutPaid(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	entry, err := s.payoutSvc.MarkPaid(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordPayoutTransition("paid")
	respondOK(c, http.StatusOK, entry)
}

type compensatePayoutRequest struct {
	ConversionIDs []string `json:"conversionIds"`
	Reason        string   `json:"reason"`
}

func (s *Server) CompensatePayout(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req compensatePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	conversionIDs := make([]snowflake.ID, 0, len(req.ConversionIDs))
	for _, raw := range req.ConversionIDs {
		conversionID, err := parseID(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		conversionIDs = append(conversionIDs, conversionID)
	}

	entry, err := s.payoutSvc.CreateCompensation(c.Request.Context(), payoutdomain.CompensationRequest{
		EntryID:       id,
		ConversionIDs: conversionIDs,
		Reason:        strings.TrimSpace(req.Reason),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordPayoutTransition("compensation_created")
	respondOK(c, http.StatusCreated, entry)
}
