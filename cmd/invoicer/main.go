package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/ledgerline/invoicer/internal/config"
	"github.com/ledgerline/invoicer/internal/migration"
	"github.com/ledgerline/invoicer/internal/observability"
	"github.com/ledgerline/invoicer/internal/server"
	"github.com/ledgerline/invoicer/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
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
