package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
)

type createCafeRequest struct {
	PartnerID      string          `json:"partnerId"`
	Name           string          `json:"name"`
	CommissionRate decimal.Decimal `json:"commissionRate"`
}

func (s *Server) CreateCafe(c *gin.Context) {
	var req createCafeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partnerID, err := parseID(req.PartnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	cafe, err := s.cafeSvc.Create(c.Request.Context(), cafedomain.CreateRequest{
		PartnerID:      partnerID,
		Name:           strings.TrimSpace(req.Name),
		CommissionRate: req.CommissionRate,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, cafe)
}

type updateCafeStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) UpdateCafeStatus(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateCafeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cafe, err := s.cafeSvc.UpdateStatus(
		c.Request.Context(),
		id,
		cafedomain.Status(strings.ToUpper(strings.TrimSpace(req.Status))),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, cafe)
}
