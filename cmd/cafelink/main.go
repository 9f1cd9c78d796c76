package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cafelink/internal/clock"
	"github.com/smallbiznis/cafelink/internal/config"
	"github.com/smallbiznis/cafelink/internal/logger"
	"github.com/smallbiznis/cafelink/internal/migration"
	"github.com/smallbiznis/cafelink/internal/server"
	"github.com/smallbiznis/cafelink/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
