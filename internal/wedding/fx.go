package wedding

import (
	"github.com/evermore-app/evermore/internal/wedding/repository"
	"github.com/evermore-app/evermore/internal/wedding/service"
	"go.uber.org/fx"
)

var Module = fx.Module("wedding.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
