package subscription

import (
	"github.com/warebox/warebox/internal/subscription/repository"
	"github.com/warebox/warebox/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
