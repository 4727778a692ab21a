package media

import (
	"github.com/evermore-app/evermore/internal/media/repository"
	"github.com/evermore-app/evermore/internal/media/service"
	"go.uber.org/fx"
)

var Module = fx.Module("media.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
