package reservation

import (
	"github.com/warebox/warebox/internal/reservation/repository"
	"github.com/warebox/warebox/internal/reservation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reservation",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
