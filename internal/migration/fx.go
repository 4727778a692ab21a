package migration

import (
	authdomain "github.com/evermore-app/evermore/internal/auth/domain"
	"github.com/evermore-app/evermore/internal/config"
	guestdomain "github.com/evermore-app/evermore/internal/guest/domain"
	invitationdomain "github.com/evermore-app/evermore/internal/invitation/domain"
	mediadomain "github.com/evermore-app/evermore/internal/media/domain"
	qadomain "github.com/evermore-app/evermore/internal/qa/domain"
	"github.com/evermore-app/evermore/internal/seed"
	weddingdomain "github.com/evermore-app/evermore/internal/wedding/domain"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, node *snowflake.Node, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments derive the schema from the
			// models directly.
			if err := conn.AutoMigrate(
				&authdomain.User{}, &authdomain.Session{},
				&weddingdomain.Wedding{}, &weddingdomain.WeddingMember{},
				&invitationdomain.Invitation{},
				&guestdomain.GuestRSVP{},
				&mediadomain.Media{},
				&qadomain.Question{}, &qadomain.Answer{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureBootstrapAdmin(conn, node, cfg)
	}),
)
