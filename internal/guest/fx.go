package guest

import (
	"github.com/evermore-app/evermore/internal/guest/repository"
	"github.com/evermore-app/evermore/internal/guest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("guest.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
