package attribution

import (
	attributiondomain "github.com/smallbiznis/cafelink/internal/attribution/domain"
	"github.com/smallbiznis/cafelink/internal/attribution/repository"
	"github.com/smallbiznis/cafelink/internal/attribution/service"
	"github.com/smallbiznis/cafelink/internal/config"
	"go.uber.org/fx"
)

func provideCookieCodec(cfg config.Config) *attributiondomain.CookieCodec {
	return attributiondomain.NewCookieCodec(cfg.CookieSecret)
}

var Module = fx.Module("attribution.service",
	fx.Provide(provideCookieCodec),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
