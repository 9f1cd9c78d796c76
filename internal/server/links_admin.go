package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	referraldomain "github.com/smallbiznis/cafelink/internal/referral/domain"
)

type createLinkRequest struct {
	CafeID         string `json:"cafeId"`
	DestinationURL string `json:"destinationUrl"`
	UTMCampaign    string `json:"utmCampaign"`
	UTMMedium      string `json:"utmMedium"`
	UTMSource      string `json:"utmSource"`
}

func (s *Server) CreateReferralLink(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	cafeID, err := parseID(req.CafeID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	link, err := s.referralSvc.CreateLink(c.Request.Context(), cafeID, referraldomain.Campaign{
		DestinationURL: req.DestinationURL,
		UTMCampaign:    req.UTMCampaign,
		UTMMedium:      req.UTMMedium,
		UTMSource:      req.UTMSource,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, link)
}
