package box

import (
	"github.com/warebox/warebox/internal/box/repository"
	"github.com/warebox/warebox/internal/box/service"
	"go.uber.org/fx"
)

var Module = fx.Module("box.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
