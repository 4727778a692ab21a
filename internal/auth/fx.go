package auth

import (
	"github.com/evermore-app/evermore/internal/auth/repository"
	"github.com/evermore-app/evermore/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
)
