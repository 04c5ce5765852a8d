package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockyard/internal/category"
	"github.com/smallbiznis/stockyard/internal/clock"
	"github.com/smallbiznis/stockyard/internal/config"
	"github.com/smallbiznis/stockyard/internal/history"
	"github.com/smallbiznis/stockyard/internal/migration"
	"github.com/smallbiznis/stockyard/internal/observability"
	"github.com/smallbiznis/stockyard/internal/product"
	"github.com/smallbiznis/stockyard/internal/server"
	"github.com/smallbiznis/stockyard/internal/transfer"
	"github.com/smallbiznis/stockyard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		db.Module,
		migration.Module,

		// Domains
		product.Module,
		history.Module,
		category.Module,
		transfer.Module,

		// HTTP surface
		server.Module,
	)

	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
