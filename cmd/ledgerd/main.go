package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tallybook/ledgerd/internal/clock"
	"github.com/tallybook/ledgerd/internal/config"
	"github.com/tallybook/ledgerd/internal/logger"
	"github.com/tallybook/ledgerd/internal/migration"
	"github.com/tallybook/ledgerd/internal/observability/metrics"
	"github.com/tallybook/ledgerd/internal/server"
	"github.com/tallybook/ledgerd/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		metrics.Module,
		migration.Module,
		server.Module,
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
