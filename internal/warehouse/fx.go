package warehouse

import (
	"github.com/warebox/warebox/internal/warehouse/repository"
	"github.com/warebox/warebox/internal/warehouse/service"
	"go.uber.org/fx"
)

var Module = fx.Module("warehouse.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
