package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/evermore-app/evermore/internal/config"
	"github.com/evermore-app/evermore/internal/logger"
	"github.com/evermore-app/evermore/internal/migration"
	"github.com/evermore-app/evermore/internal/server"
	"github.com/evermore-app/evermore/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
