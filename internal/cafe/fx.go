package cafe

import (
	"github.com/smallbiznis/cafelink/internal/cafe/repository"
	"github.com/smallbiznis/cafelink/internal/cafe/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cafe.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
