package usagelog

import (
	"github.com/warebox/warebox/internal/usagelog/repository"
	"github.com/warebox/warebox/internal/usagelog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usagelog",
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
