package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/cafelink/internal/apikey/domain"
)

type createAPIKeyRequest struct {
	PartnerID     string   `json:"partnerId"`
	Scopes        []string `json:"scopes"`
	ExpiresInDays int      `json:"expiresInDays"`
	RateLimit     int      `json:"rateLimit"`
}

func (s *Server) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	partnerID, err := parseID(req.PartnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.apiKeySvc.Generate(c.Request.Context(), apikeydomain.GenerateRequest{
		PartnerID:     partnerID,
		Scopes:        req.Scopes,
		ExpiresInDays: req.ExpiresInDays,
		RateLimit:     req.RateLimit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, resp)
}

func (s *Server) RevokeAPIKey(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.apiKeySvc.Revoke(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"revoked": true})
}
