package extpost

import (
	"github.com/smallbiznis/cafelink/internal/extpost/repository"
	"github.com/smallbiznis/cafelink/internal/extpost/service"
	"go.uber.org/fx"
)

var Module = fx.Module("extpost.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
