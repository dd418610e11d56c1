package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/warebox/warebox/internal/authorization"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	boxrepository "github.com/warebox/warebox/internal/box/repository"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	warehouserepository "github.com/warebox/warebox/internal/warehouse/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  boxdomain.Service
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&warehousedomain.Warehouse{},
		&boxdomain.Box{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{
		Log:      zap.NewNop(),
		Enforcer: enforcer,
	})
	require.NoError(t, authzSvc.GrantAdmin(context.Background(), "admin"))

	return &fixture{
		db:   db,
		node: node,
		svc: New(ServiceParam{
			DB:            db,
			Log:           zap.NewNop(),
			GenID:         node,
			Repo:          boxrepository.Provide(),
			WarehouseRepo: warehouserepository.Provide(),
			AuthzSvc:      authzSvc,
		}),
	}
}

func (f *fixture) seedWarehouse(t *testing.T) snowflake.ID {
	t.Helper()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	w := &warehousedomain.Warehouse{
		ID:        f.node.Generate(),
		Name:      "Depot",
		Location:  "Rotterdam",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, f.db.Create(w).Error)
	return w.ID
}

func TestUpsertRequiresAdmin(t *testing.T) {
	f := setup(t)
	w := f.seedWarehouse(t)

	req := boxdomain.UpsertRequest{
		WarehouseID: w.String(),
		Name:        "A-101",
		BoxType:     boxdomain.Standard,
		Size:        5,
		PricePerDay: 10,
	}

	_, err := f.svc.Upsert(context.Background(), "stranger", req)
	require.ErrorIs(t, err, boxdomain.ErrForbidden)

	b, err := f.svc.Upsert(context.Background(), "admin", req)
	require.NoError(t, err)
	require.Equal(t, boxdomain.StatusAvailable, b.Status)
	require.NotZero(t, b.ID)
}

func TestUpsertValidatesInput(t *testing.T) {
	f := setup(t)
	w := f.seedWarehouse(t)
	ctx := context.Background()

	base := boxdomain.UpsertRequest{
		WarehouseID: w.String(),
		Name:        "A-101",
		BoxType:     boxdomain.Standard,
		Size:        5,
		PricePerDay: 10,
	}

	req := base
	req.Name = "  "
	_, err := f.svc.Upsert(ctx, "admin", req)
	require.ErrorIs(t, err, boxdomain.ErrInvalidName)

	req = base
	req.BoxType = boxdomain.BoxType("VAULT")
	_, err = f.svc.Upsert(ctx, "admin", req)
	require.ErrorIs(t, err, boxdomain.ErrInvalidType)

	req = base
	req.Size = 0
	_, err = f.svc.Upsert(ctx, "admin", req)
	require.ErrorIs(t, err, boxdomain.ErrInvalidSize)

	req = base
	req.PricePerDay = -1
	_, err = f.svc.Upsert(ctx, "admin", req)
	require.ErrorIs(t, err, boxdomain.ErrInvalidPrice)

	req = base
	req.WarehouseID = f.node.Generate().String()
	_, err = f.svc.Upsert(ctx, "admin", req)
	require.ErrorIs(t, err, boxdomain.ErrWarehouseNotFound)
}

func TestUpsertUpdatesExistingBox(t *testing.T) {
	f := setup(t)
	w := f.seedWarehouse(t)
	ctx := context.Background()

	created, err := f.svc.Upsert(ctx, "admin", boxdomain.UpsertRequest{
		WarehouseID: w.String(),
		Name:        "A-101",
		BoxType:     boxdomain.Standard,
		Size:        5,
		PricePerDay: 10,
	})
	require.NoError(t, err)

	maintenance := boxdomain.StatusMaintenance
	updated, err := f.svc.Upsert(ctx, "admin", boxdomain.UpsertRequest{
		ID:          created.ID.String(),
		WarehouseID: w.String(),
		Name:        "A-101b",
		BoxType:     boxdomain.Secure,
		Size:        6,
		PricePerDay: 12,
		Status:      &maintenance,
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "A-101b", updated.Name)
	require.Equal(t, boxdomain.StatusMaintenance, updated.Status)

	got, err := f.svc.Get(ctx, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, boxdomain.Secure, got.BoxType)
	require.InDelta(t, 12.0, got.PricePerDay, 1e-9)
}

func TestSearchValidatesFilter(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start
	_, err := f.svc.Search(ctx, boxdomain.SearchRequest{StartDate: &start, EndDate: &end})
	require.ErrorIs(t, err, boxdomain.ErrInvalidWindow)

	bad := boxdomain.BoxType("VAULT")
	_, err = f.svc.Search(ctx, boxdomain.SearchRequest{BoxType: &bad})
	require.ErrorIs(t, err, boxdomain.ErrInvalidType)
}

func TestSearchFiltersInventory(t *testing.T) {
	f := setup(t)
	w := f.seedWarehouse(t)
	ctx := context.Background()

	for _, spec := range []struct {
		name  string
		typ   boxdomain.BoxType
		size  float64
		price float64
	}{
		{"A-101", boxdomain.Standard, 5, 10},
		{"A-102", boxdomain.Standard, 12, 22},
		{"A-201", boxdomain.Secure, 5, 16},
	} {
		_, err := f.svc.Upsert(ctx, "admin", boxdomain.UpsertRequest{
			WarehouseID: w.String(),
			Name:        spec.name,
			BoxType:     spec.typ,
			Size:        spec.size,
			PricePerDay: spec.price,
		})
		require.NoError(t, err)
	}

	typ := boxdomain.Standard
	maxPrice := 15.0
	found, err := f.svc.Search(ctx, boxdomain.SearchRequest{BoxType: &typ, MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "A-101", found[0].Name)
}

func TestGetUnknownBox(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Get(context.Background(), f.node.Generate().String())
	require.ErrorIs(t, err, boxdomain.ErrNotFound)

	_, err = f.svc.Get(context.Background(), "abc")
	require.ErrorIs(t, err, boxdomain.ErrInvalidID)
}
