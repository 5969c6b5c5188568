package main

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"resellops/pkg/config"
	"resellops/pkg/db"
	"resellops/pkg/gen"
	"resellops/pkg/health"
	"resellops/pkg/logger"
	"resellops/pkg/redis"
	"resellops/pkg/server"
	"resellops/services/analytics"
	"resellops/services/assignment"
	"resellops/services/catalog"
	"resellops/services/compat"
	"resellops/services/completion"
	"resellops/services/task"
	"resellops/services/user"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		gen.Module,
		db.Module,
		redis.Module,
		server.Module,
		health.Module,

		user.Module,
		catalog.Module,
		task.Module,
		completion.Module,
		compat.Module,
		assignment.Module,
		analytics.Module,

		fx.Invoke(migrate),
	)

	app.Run()
}

func migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&user.User{},
		&catalog.Platform{},
		&catalog.Store{},
		&catalog.Category{},
		&catalog.Subcategory{},
		&catalog.Range{},
		&task.Task{},
		&assignment.Assignment{},
		&assignment.RangeQuantity{},
		&completion.ListingCompletion{},
		&completion.RangeCompletion{},
		&compat.CompatibilityAssignment{},
	)
}
