package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	"github.com/warebox/warebox/internal/usagelog/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  usagelogdomain.Service
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
		&usagelogdomain.Entry{},
		&reservationdomain.Reservation{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &fixture{
		db:   db,
		node: node,
		svc: New(ServiceParam{
			DB:    db,
			Log:   zap.NewNop(),
			GenID: node,
			Repo:  repository.Provide(),
		}),
	}
}

func (f *fixture) seedReservation(t *testing.T, boxID snowflake.ID, clientID string) snowflake.ID {
	t.Helper()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	res := &reservationdomain.Reservation{
		ID:            f.node.Generate(),
		BoxID:         boxID,
		ClientID:      clientID,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, 7),
		Status:        reservationdomain.StatusActive,
		PaymentStatus: reservationdomain.PaymentPending,
		AccessCode:    "123456",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, f.db.Create(res).Error)
	return res.ID
}

func TestHistoryRequiresOwnReservation(t *testing.T) {
	f := setup(t)
	boxID := f.node.Generate()
	resID := f.seedReservation(t, boxID, "tenant")

	f.svc.Log(context.Background(), usagelogdomain.Record{
		BoxID:         boxID,
		ReservationID: &resID,
		ClientID:      "tenant",
		ActionType:    usagelogdomain.BoxAccessed,
	})

	entries, err := f.svc.History(context.Background(), boxID.String(), "tenant")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, usagelogdomain.BoxAccessed, entries[0].ActionType)
	require.False(t, entries[0].ActionTime.IsZero())

	// Clients without a reservation on the box cannot read its history.
	_, err = f.svc.History(context.Background(), boxID.String(), "stranger")
	require.ErrorIs(t, err, usagelogdomain.ErrForbidden)

	_, err = f.svc.History(context.Background(), "nope", "tenant")
	require.ErrorIs(t, err, usagelogdomain.ErrInvalidID)
}

func TestHistoryListsNewestFirst(t *testing.T) {
	f := setup(t)
	boxID := f.node.Generate()
	f.seedReservation(t, boxID, "tenant")

	for _, action := range []usagelogdomain.ActionType{
		usagelogdomain.ReservationCreated,
		usagelogdomain.BoxAccessed,
		usagelogdomain.ExtendedRental,
	} {
		f.svc.Log(context.Background(), usagelogdomain.Record{
			BoxID:      boxID,
			ClientID:   "tenant",
			ActionType: action,
		})
	}

	entries, err := f.svc.History(context.Background(), boxID.String(), "tenant")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].ActionTime.After(entries[i-1].ActionTime))
	}
}
