package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/obtain/internal/clock"
	"github.com/smallbiznis/obtain/internal/config"
	"github.com/smallbiznis/obtain/internal/migration"
	"github.com/smallbiznis/obtain/internal/notification"
	"github.com/smallbiznis/obtain/internal/observability"
	"github.com/smallbiznis/obtain/internal/providers"
	"github.com/smallbiznis/obtain/internal/seed"
	"github.com/smallbiznis/obtain/internal/server"
	"github.com/smallbiznis/obtain/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema before anything reads it
		migration.Module,

		// Outbox and delivery
		providers.Module,
		notification.Module,
		notification.DispatcherModule,

		// HTTP surface and the domain services behind it
		server.Module,

		seed.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
