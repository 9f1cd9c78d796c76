package auditchain

import (
	"github.com/smallbiznis/cafelink/internal/auditchain/repository"
	"github.com/smallbiznis/cafelink/internal/auditchain/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auditchain.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
