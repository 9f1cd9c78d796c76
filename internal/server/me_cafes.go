package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	cafedomain "github.com/smallbiznis/cafelink/internal/cafe/domain"
	"github.com/smallbiznis/cafelink/pkg/db/pagination"
)

func (s *Server) ListMyCafes(c *gin.Context) {
	key := s.apiKey(c)

	var query struct {
		pagination.Page
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.cafeSvc.List(c.Request.Context(), cafedomain.ListRequest{
		PartnerID: key.PartnerID,
		Status:    cafedomain.Status(query.Status),
		Page:      query.Page,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}
