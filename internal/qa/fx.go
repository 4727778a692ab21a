package qa

import (
	"github.com/evermore-app/evermore/internal/qa/repository"
	"github.com/evermore-app/evermore/internal/qa/service"
	"go.uber.org/fx"
)

var Module = fx.Module("qa.service",
	fx.Provide(repository.New),
	fx.Provide(service.NewService),
)
