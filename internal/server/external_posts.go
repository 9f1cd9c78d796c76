package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	extpostdomain "github.com/smallbiznis/cafelink/internal/extpost/domain"
)

type externalPostsBatchRequest struct {
	Posts []extpostdomain.PostInput `json:"posts"`
}

func (s *Server) BatchUpsertExternalPosts(c *gin.Context) {
	key := s.apiKey(c)

	var req externalPostsBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.extPostSvc.BatchUpsert(c.Request.Context(), key.PartnerID, req.Posts)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondOK(c, http.StatusOK, result)
}
