package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/alternatives"
	"github.com/warebox/warebox/internal/authorization"
	"github.com/warebox/warebox/internal/availability"
	"github.com/warebox/warebox/internal/box"
	"github.com/warebox/warebox/internal/clock"
	"github.com/warebox/warebox/internal/config"
	"github.com/warebox/warebox/internal/logger"
	"github.com/warebox/warebox/internal/migration"
	"github.com/warebox/warebox/internal/observability"
	"github.com/warebox/warebox/internal/pricing"
	"github.com/warebox/warebox/internal/providers/notification"
	"github.com/warebox/warebox/internal/providers/payment"
	"github.com/warebox/warebox/internal/recommendation"
	"github.com/warebox/warebox/internal/reservation"
	"github.com/warebox/warebox/internal/seed"
	"github.com/warebox/warebox/internal/server"
	"github.com/warebox/warebox/internal/subscription"
	"github.com/warebox/warebox/internal/usagelog"
	"github.com/warebox/warebox/internal/warehouse"
	"github.com/warebox/warebox/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		authorization.Module,
		warehouse.Module,
		box.Module,
		availability.Module,
		pricing.Module,
		payment.Module,
		notification.Module,
		usagelog.Module,
		reservation.Module,
		alternatives.Module,
		recommendation.Module,
		subscription.Module,

		migration.Module,
		seed.Module,
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
