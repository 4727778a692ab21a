package mediastore

import (
	"github.com/evermore-app/evermore/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.mediastore",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) (Store, error) {
	return NewLocal(cfg.MediaStoreDir, cfg.MediaPublicURL)
}
