package alternatives

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	boxrepository "github.com/warebox/warebox/internal/box/repository"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

type finderFixture struct {
	db     *gorm.DB
	node   *snowflake.Node
	finder Finder
}

func setupFinder(t *testing.T) *finderFixture {
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
		&reservationdomain.Reservation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &finderFixture{
		db:     db,
		node:   node,
		finder: NewFinder(db, zap.NewNop(), boxrepository.Provide()),
	}
}

func (f *finderFixture) seedWarehouse(t *testing.T, name string) snowflake.ID {
	t.Helper()
	w := &warehousedomain.Warehouse{
		ID:        f.node.Generate(),
		Name:      name,
		Active:    true,
		CreatedAt: day("2024-01-01"),
		UpdatedAt: day("2024-01-01"),
	}
	require.NoError(t, f.db.Create(w).Error)
	return w.ID
}

func (f *finderFixture) seedBox(t *testing.T, warehouseID snowflake.ID, name string, boxType boxdomain.BoxType, size, price float64) snowflake.ID {
	t.Helper()
	b := &boxdomain.Box{
		ID:          f.node.Generate(),
		WarehouseID: warehouseID,
		Name:        name,
		BoxType:     boxType,
		Size:        size,
		PricePerDay: price,
		Status:      boxdomain.StatusAvailable,
		CreatedAt:   day("2024-01-01"),
		UpdatedAt:   day("2024-01-01"),
	}
	require.NoError(t, f.db.Create(b).Error)
	return b.ID
}

func TestFindAlternativesSameWarehouseFirst(t *testing.T) {
	f := setupFinder(t)
	home := f.seedWarehouse(t, "Home")
	away := f.seedWarehouse(t, "Away")

	original := f.seedBox(t, home, "orig", boxdomain.Standard, 10, 10)
	exact := f.seedBox(t, home, "exact", boxdomain.Standard, 10, 10)
	bigger := f.seedBox(t, home, "bigger", boxdomain.Standard, 11, 11)
	f.seedBox(t, home, "too-big", boxdomain.Standard, 20, 10)
	f.seedBox(t, home, "too-pricey", boxdomain.Standard, 10, 14)
	otherType := f.seedBox(t, home, "secure", boxdomain.Secure, 10, 12)
	f.seedBox(t, away, "away", boxdomain.Standard, 10, 10)

	alts, err := f.finder.FindAlternatives(context.Background(), original.String(), day("2024-03-01"), day("2024-03-05"))
	require.NoError(t, err)

	require.NotEmpty(t, alts)
	for _, a := range alts {
		require.NotEqual(t, original, a.Box.ID, "original box must never rank itself")
		require.True(t, a.SameWarehouse, "pass 1 produced enough matches, pass 2 must not run")
	}
	for i := 1; i < len(alts); i++ {
		require.GreaterOrEqual(t, alts[i-1].Score, alts[i].Score)
	}

	// A perfect twin scores 100 and outranks everything else.
	require.Equal(t, exact, alts[0].Box.ID)
	require.Equal(t, 100, alts[0].Score)
	require.Equal(t, bigger, alts[1].Box.ID)
	require.Less(t, alts[1].Score, 100)

	seen := map[snowflake.ID]bool{}
	for _, a := range alts {
		seen[a.Box.ID] = true
	}
	require.True(t, seen[otherType])
}

func TestFindAlternativesSecondPass(t *testing.T) {
	f := setupFinder(t)
	home := f.seedWarehouse(t, "Home")
	away := f.seedWarehouse(t, "Away")

	original := f.seedBox(t, home, "orig", boxdomain.Secure, 10, 10)
	f.seedBox(t, away, "away-match", boxdomain.Secure, 12, 13)
	f.seedBox(t, away, "away-wrong-type", boxdomain.Standard, 10, 10)
	f.seedBox(t, away, "away-too-pricey", boxdomain.Secure, 10, 16)

	alts, err := f.finder.FindAlternatives(context.Background(), original.String(), day("2024-03-01"), day("2024-03-05"))
	require.NoError(t, err)

	require.Len(t, alts, 1)
	require.False(t, alts[0].SameWarehouse)
	require.True(t, alts[0].SameType)
}

func TestFindAlternativesExcludesBookedWindows(t *testing.T) {
	f := setupFinder(t)
	home := f.seedWarehouse(t, "Home")

	original := f.seedBox(t, home, "orig", boxdomain.Standard, 10, 10)
	booked := f.seedBox(t, home, "booked", boxdomain.Standard, 10, 10)
	free := f.seedBox(t, home, "free", boxdomain.Standard, 10, 10)

	require.NoError(t, f.db.Create(&reservationdomain.Reservation{
		ID:            f.node.Generate(),
		BoxID:         booked,
		ClientID:      "client-1",
		StartDate:     day("2024-03-01"),
		EndDate:       day("2024-03-10"),
		Status:        reservationdomain.StatusActive,
		PaymentStatus: reservationdomain.PaymentPending,
		AccessCode:    "123456",
		CreatedAt:     day("2024-02-01"),
		UpdatedAt:     day("2024-02-01"),
	}).Error)

	alts, err := f.finder.FindAlternatives(context.Background(), original.String(), day("2024-03-05"), day("2024-03-08"))
	require.NoError(t, err)

	ids := map[snowflake.ID]bool{}
	for _, a := range alts {
		ids[a.Box.ID] = true
	}
	require.True(t, ids[free])
	require.False(t, ids[booked])
}

func TestFindAlternativesCapsAtEight(t *testing.T) {
	f := setupFinder(t)
	home := f.seedWarehouse(t, "Home")

	original := f.seedBox(t, home, "orig", boxdomain.Standard, 10, 10)
	for i := 0; i < 12; i++ {
		f.seedBox(t, home, fmt.Sprintf("alt-%d", i), boxdomain.Standard, 10, 10)
	}

	alts, err := f.finder.FindAlternatives(context.Background(), original.String(), day("2024-03-01"), day("2024-03-05"))
	require.NoError(t, err)
	require.Len(t, alts, 8)
}

func TestFindAlternativesUnknownBox(t *testing.T) {
	f := setupFinder(t)

	_, err := f.finder.FindAlternatives(context.Background(), f.node.Generate().String(), day("2024-03-01"), day("2024-03-05"))
	require.ErrorIs(t, err, ErrBoxNotFound)

	_, err = f.finder.FindAlternatives(context.Background(), "not-a-number", day("2024-03-01"), day("2024-03-05"))
	require.ErrorIs(t, err, ErrInvalidID)

	_, err = f.finder.FindAlternatives(context.Background(), "1", day("2024-03-05"), day("2024-03-05"))
	require.ErrorIs(t, err, ErrInvalidWindow)
}
