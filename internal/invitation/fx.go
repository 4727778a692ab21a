package invitation

import (
	"github.com/evermore-app/evermore/internal/invitation/repository"
	"github.com/evermore-app/evermore/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
