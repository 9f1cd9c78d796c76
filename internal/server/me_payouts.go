package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	payoutdomain "github.com/smallbiznis/cafelink/internal/payout/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
)

func (s *Server) ListMyPayouts(c *gin.Context) {
	key := s.apiKey(c)

	var query struct {
		pagination.Page
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.payoutSvc.List(c.Request.Context(), payoutdomain.ListRequest{
		PartnerID: key.PartnerID,
		Page:      query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}
