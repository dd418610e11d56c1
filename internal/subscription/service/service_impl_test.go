package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/clock"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	"github.com/warebox/warebox/internal/subscription/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) subscriptiondomain.Service {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&subscriptiondomain.Subscription{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func strPtr(s string) *string { return &s }

func TestCreateSubscription(t *testing.T) {
	svc := setup(t)

	boxType := boxdomain.Standard
	minSize := 5.0
	sub, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID: "client-1",
		BoxType:  &boxType,
		MinSize:  &minSize,
	})
	require.NoError(t, err)
	require.True(t, sub.Active)
	require.NotZero(t, sub.ID)
	require.Nil(t, sub.LastNotifiedAt)

	listed, err := svc.List(context.Background(), "client-1")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, sub.ID, listed[0].ID)
}

func TestCreateSubscriptionRequiresCriteria(t *testing.T) {
	svc := setup(t)

	_, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID: "client-1",
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrNoCriteria)

	// A full date window counts as a criterion on its own.
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)
	sub, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID:  "client-1",
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)
	require.True(t, sub.HasCriteria())
}

func TestCreateSubscriptionRejectsPartialWindow(t *testing.T) {
	svc := setup(t)

	boxType := boxdomain.Secure
	start := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID:  "client-1",
		BoxType:   &boxType,
		StartDate: &start,
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrPartialWindow)

	end := start
	_, err = svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID:  "client-1",
		BoxType:   &boxType,
		StartDate: &start,
		EndDate:   &end,
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidWindow)
}

func TestCreateSubscriptionValidatesIDs(t *testing.T) {
	svc := setup(t)

	_, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID: "client-1",
		BoxID:    strPtr("not-a-number"),
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidID)

	badType := boxdomain.BoxType("VAULT")
	_, err = svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID: "client-1",
		BoxType:  &badType,
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidType)

	_, err = svc.Create(context.Background(), subscriptiondomain.CreateRequest{ClientID: " "})
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidClient)
}

func TestDeactivateSubscription(t *testing.T) {
	svc := setup(t)

	boxType := boxdomain.Standard
	sub, err := svc.Create(context.Background(), subscriptiondomain.CreateRequest{
		ClientID: "client-1",
		BoxType:  &boxType,
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), sub.ID.String(), "intruder")
	require.ErrorIs(t, err, subscriptiondomain.ErrForbidden)

	got, err := svc.Deactivate(context.Background(), sub.ID.String(), "client-1")
	require.NoError(t, err)
	require.False(t, got.Active)

	// Deactivating twice is a no-op.
	again, err := svc.Deactivate(context.Background(), sub.ID.String(), "client-1")
	require.NoError(t, err)
	require.False(t, again.Active)

	_, err = svc.Deactivate(context.Background(), "999999", "client-1")
	require.ErrorIs(t, err, subscriptiondomain.ErrNotFound)

	_, err = svc.Deactivate(context.Background(), "abc", "client-1")
	require.ErrorIs(t, err, subscriptiondomain.ErrInvalidID)
}
