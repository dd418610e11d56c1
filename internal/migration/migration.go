package migration

import (
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Migrate brings the schema up to date for every persisted model.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	err := db.AutoMigrate(
		&warehousedomain.Warehouse{},
		&boxdomain.Box{},
		&reservationdomain.Reservation{},
		&usagelogdomain.Entry{},
		&subscriptiondomain.Subscription{},
	)
	if err != nil {
		log.Error("schema migration failed", zap.Error(err))
		return err
	}
	log.Info("schema migration complete")
	return nil
}

var Module = fx.Module("migration",
	fx.Invoke(Migrate),
)
