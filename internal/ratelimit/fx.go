package ratelimit

import (
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/cafelink/internal/clock"
	"github.com/smallbiznis/cafelink/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("rate.limit",
	fx.Provide(provideLimiter),
)

func provideLimiter(cfg config.Config, c clock.Clock, log *zap.Logger) Limiter {
	if cfg.RedisAddr == "" {
		log.Named("rate.limit").Warn("no redis configured, using in-process rate limiter")
		return NewLocalWindow(c)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return NewSlidingWindow(client)
}
