package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	"go.uber.org/zap"
)

// Redirect resolves a short code, stamps first-touch attribution and sends
// the visitor to the destination. The click counter is written off the
// request path so redirect latency stays flat under write contention.
func (s *Server) Redirect(c *gin.Context) {
	code := c.Param("code")

	link, err := s.referralSvc.Resolve(c.Request.Context(), code)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	existing, _ := c.Cookie(attributiondomain.CookieName)
	result, err := s.attributionSvc.AttributeClick(c.Request.Context(), attributiondomain.ClickRequest{
		LinkID:         link.ID,
		ExistingCookie: existing,
		IP:             c.ClientIP(),
		UserAgent:      c.Request.UserAgent(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Empty value means an earlier cookie already holds first touch.
	if result.CookieValue != "" {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(
			attributiondomain.CookieName,
			result.CookieValue,
			int(result.CookieMaxAge/time.Second),
			"/",
			"",
			s.cfg.CookieSecure,
			true,
		)
	}

	s.metrics.RecordClick(code)
	go s.recordClick(link.ID)

	c.Redirect(http.StatusFound, link.DestinationURL)
}

func (s *Server) recordClick(linkID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.referralSvc.RecordClick(ctx, linkID); err != nil {
		s.log.Warn("record click", zap.Error(err), zap.String("link_id", linkID.String()))
	}
}
