package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetMyStats(c *gin.Context) {
	key := s.apiKey(c)

	stats, err := s.payoutSvc.GetPartnerStats(c.Request.Context(), key.PartnerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, stats)
}
