package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/authorization"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/config"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"github.com/warebox/warebox/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultAdminID = "admin"

type demoBox struct {
	name     string
	boxType  boxdomain.BoxType
	size     float64
	price    float64
	features []string
}

var demoWarehouses = []struct {
	name     string
	location string
	address  string
	boxes    []demoBox
}{
	{
		name:     "Central Depot",
		location: "Rotterdam",
		address:  "Havenstraat 12",
		boxes: []demoBox{
			{"C-101", boxdomain.Standard, 4, 8, []string{"24h-access"}},
			{"C-102", boxdomain.Standard, 6, 10, nil},
			{"C-201", boxdomain.ClimateControlled, 8, 18, []string{"climate", "24h-access"}},
			{"C-301", boxdomain.Secure, 4, 15, []string{"camera", "alarm"}},
		},
	},
	{
		name:     "North Yard",
		location: "Groningen",
		address:  "Noorderweg 3",
		boxes: []demoBox{
			{"N-101", boxdomain.Standard, 5, 7, nil},
			{"N-102", boxdomain.ExtraLarge, 20, 30, []string{"drive-in"}},
			{"N-201", boxdomain.Refrigerated, 10, 25, []string{"cold-chain"}},
		},
	},
}

// EnsureDemoData inserts the demo inventory once. Existing rows win: the
// seeder never overwrites operator data.
func EnsureDemoData(gdb *gorm.DB, log *zap.Logger, authzSvc authorization.Service) error {
	if gdb == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := authzSvc.GrantAdmin(ctx, defaultAdminID); err != nil {
		return err
	}

	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Raw(`SELECT COUNT(1) FROM warehouses`).Scan(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Debug("seed skipped, inventory already present")
			return nil
		}

		now := time.Now().UTC()
		for _, w := range demoWarehouses {
			warehouse := warehousedomain.Warehouse{
				ID:        node.Generate(),
				Name:      w.name,
				Location:  w.location,
				Address:   w.address,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&warehouse).Error; err != nil {
				return err
			}
			for _, b := range w.boxes {
				box := boxdomain.Box{
					ID:          node.Generate(),
					WarehouseID: warehouse.ID,
					Name:        b.name,
					BoxType:     b.boxType,
					Size:        b.size,
					PricePerDay: b.price,
					Status:      boxdomain.StatusAvailable,
					Features:    datatypes.NewJSONSlice(b.features),
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if err := tx.Create(&box).Error; err != nil {
					return err
				}
			}
		}
		log.Info("seeded demo inventory", zap.Int("warehouses", len(demoWarehouses)))
		return nil
	})
	// Two binaries booting against a fresh database can race past the count
	// check. The loser's insert is harmless.
	if db.IsDuplicateKeyErr(err) {
		log.Debug("seed skipped, concurrent seeder won")
		return nil
	}
	return err
}

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, gdb *gorm.DB, log *zap.Logger, authzSvc authorization.Service) error {
		if !cfg.SeedDemoData {
			return nil
		}
		return EnsureDemoData(gdb, log.Named("seed"), authzSvc)
	}),
)
