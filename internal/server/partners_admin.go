package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/cafelink/internal/auditchain/domain"
	partnerdomain "github.com/smallbiznis/cafelink/internal/partner/domain"
	"go.uber.org/zap"
)

func (s *Server) CreatePartner(c *gin.Context) {
	var req partnerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partner, err := s.partnerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, partner)
}

func (s *Server) GetPartner(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	partner, err := s.partnerSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, partner)
}

type updatePartnerStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdatePartnerStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updatePartnerStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partner, err := s.partnerSvc.UpdateStatus(
		c.Request.Context(),
		id,
		partnerdomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, partner)
}

// VerifyAuditChain walks the partner's snapshot chain from genesis. A break
// freezes the partner's settlement pipeline pending manual investigation.
func (s *Server) VerifyAuditChain(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	report, err := s.auditSvc.VerifyChain(c.Request.Context(), id)
	if err != nil && !errors.Is(err, auditdomain.ErrChainBroken) {
		AbortWithError(c, err)
		return
	}

	if !report.Valid {
		s.log.Error("audit chain broken, freezing settlement",
			zap.String("partner_id", id.String()),
			zap.Int("broken_at", report.BrokenAt),
		)
		if err := s.partnerSvc.Freeze(c.Request.Context(), id); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	respondOK(c, http.StatusOK, report)
}
