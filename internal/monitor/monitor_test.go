package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/warebox/warebox/internal/availability"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	boxrepository "github.com/warebox/warebox/internal/box/repository"
	"github.com/warebox/warebox/internal/clock"
	"github.com/warebox/warebox/internal/observability"
	"github.com/warebox/warebox/internal/providers/notification"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	subscriptionrepository "github.com/warebox/warebox/internal/subscription/repository"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type notifierStub struct {
	mu      sync.Mutex
	sent    []notification.Notification
	failFor map[string]bool
}

func (n *notifierStub) Send(_ context.Context, msg notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failFor[msg.ClientID] {
		return errors.New("push gateway down")
	}
	n.sent = append(n.sent, msg)
	return nil
}

func (n *notifierStub) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *notifierStub) last() notification.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type reservationSvcStub struct {
	reservationdomain.Service

	mu      sync.Mutex
	calls   []time.Time
	expired int
}

func (s *reservationSvcStub) ExpireOverdue(_ context.Context, now time.Time, _ int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, now)
	return s.expired, nil
}

type fixture struct {
	db       *gorm.DB
	node     *snowflake.Node
	clk      *clock.FakeClock
	subRepo  subscriptiondomain.Repository
	notifier *notifierStub
	resSvc   *reservationSvcStub
	metrics  *observability.Metrics
	mon      *Monitor
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
		&reservationdomain.Reservation{},
		&subscriptiondomain.Subscription{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	notifier := &notifierStub{failFor: map[string]bool{}}
	resSvc := &reservationSvcStub{}
	metrics := observability.New(prometheus.NewRegistry())

	mon, err := New(Params{
		DB:             db,
		Log:            zap.NewNop(),
		Clock:          clk,
		SubRepo:        subscriptionrepository.Provide(),
		BoxRepo:        boxrepository.Provide(),
		Checker:        availability.NewChecker(),
		ReservationSvc: resSvc,
		Notifier:       notifier,
		Metrics:        metrics,
		Config: Config{
			RunInterval:    time.Minute,
			BatchSize:      2, // force paging in sweeps
			NotifyCooldown: 24 * time.Hour,
			MatchLimit:     10,
			ExpireLimit:    50,
		},
	})
	require.NoError(t, err)

	return &fixture{
		db:       db,
		node:     node,
		clk:      clk,
		subRepo:  subscriptionrepository.Provide(),
		notifier: notifier,
		resSvc:   resSvc,
		metrics:  metrics,
		mon:      mon,
	}
}

func (f *fixture) seedBox(t *testing.T, boxType boxdomain.BoxType, size, price float64) *boxdomain.Box {
	t.Helper()
	now := f.clk.Now()
	b := &boxdomain.Box{
		ID:          f.node.Generate(),
		WarehouseID: f.node.Generate(),
		Name:        fmt.Sprintf("box-%s", f.node.Generate()),
		BoxType:     boxType,
		Size:        size,
		PricePerDay: price,
		Status:      boxdomain.StatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, f.db.Create(b).Error)
	return b
}

func (f *fixture) seedSubscription(t *testing.T, clientID string, mutate func(*subscriptiondomain.Subscription)) *subscriptiondomain.Subscription {
	t.Helper()
	now := f.clk.Now()
	sub := &subscriptiondomain.Subscription{
		ID:        f.node.Generate(),
		ClientID:  clientID,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(sub)
	}
	require.NoError(t, f.subRepo.Insert(context.Background(), f.db, sub))
	return sub
}

func (f *fixture) reload(t *testing.T, id snowflake.ID) *subscriptiondomain.Subscription {
	t.Helper()
	sub, err := f.subRepo.FindByID(context.Background(), f.db, id)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func TestSweepNotifiesMatchingSubscription(t *testing.T) {
	f := setup(t)
	box := f.seedBox(t, boxdomain.Standard, 5, 10)
	sub := f.seedSubscription(t, "client-1", func(s *subscriptiondomain.Subscription) {
		bt := boxdomain.Standard
		s.BoxType = &bt
	})

	require.NoError(t, f.mon.RunOnce(context.Background()))

	require.Equal(t, 1, f.notifier.count())
	msg := f.notifier.last()
	require.Equal(t, "client-1", msg.ClientID)
	require.Equal(t, sub.ID.String(), msg.Data["subscription_id"])
	require.Contains(t, msg.Data["box_ids"], box.ID.String())

	stored := f.reload(t, sub.ID)
	require.NotNil(t, stored.LastNotifiedAt)
	require.Equal(t, f.clk.Now().Unix(), stored.LastNotifiedAt.Unix())
}

func TestSweepHonorsNotifyCooldown(t *testing.T) {
	f := setup(t)
	f.seedBox(t, boxdomain.Standard, 5, 10)
	f.seedSubscription(t, "client-1", func(s *subscriptiondomain.Subscription) {
		bt := boxdomain.Standard
		s.BoxType = &bt
	})

	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 1, f.notifier.count())

	// Still inside the cooldown window: no repeat notification.
	f.clk.Advance(23 * time.Hour)
	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 1, f.notifier.count())

	// Past the cooldown the same match fires again.
	f.clk.Advance(2 * time.Hour)
	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 2, f.notifier.count())
}

func TestSweepSkipsFailingSubscription(t *testing.T) {
	f := setup(t)
	f.seedBox(t, boxdomain.Standard, 5, 10)
	f.notifier.failFor["client-broken"] = true

	broken := f.seedSubscription(t, "client-broken", func(s *subscriptiondomain.Subscription) {
		bt := boxdomain.Standard
		s.BoxType = &bt
	})
	healthy := f.seedSubscription(t, "client-healthy", func(s *subscriptiondomain.Subscription) {
		bt := boxdomain.Standard
		s.BoxType = &bt
	})

	require.NoError(t, f.mon.RunOnce(context.Background()))

	// The failing subscription did not stop the sweep.
	require.Equal(t, 1, f.notifier.count())
	require.Equal(t, "client-healthy", f.notifier.last().ClientID)
	require.InDelta(t, 1.0, testutil.ToFloat64(f.metrics.MonitorFailures), 1e-9)

	require.Nil(t, f.reload(t, broken.ID).LastNotifiedAt)
	require.NotNil(t, f.reload(t, healthy.ID).LastNotifiedAt)
}

func TestSweepTargetedBoxSubscription(t *testing.T) {
	f := setup(t)
	box := f.seedBox(t, boxdomain.Secure, 5, 10)
	sub := f.seedSubscription(t, "client-1", func(s *subscriptiondomain.Subscription) {
		id := box.ID
		s.BoxID = &id
	})

	// Occupied target: nothing to report.
	require.NoError(t, f.db.Exec(
		`UPDATE boxes SET occupied = ?, status = ? WHERE id = ?`,
		true, boxdomain.StatusOccupied, box.ID,
	).Error)
	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 0, f.notifier.count())

	// Freed up: the targeted subscription fires.
	require.NoError(t, f.db.Exec(
		`UPDATE boxes SET occupied = ?, status = ? WHERE id = ?`,
		false, boxdomain.StatusAvailable, box.ID,
	).Error)
	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 1, f.notifier.count())
	require.Equal(t, sub.ID.String(), f.notifier.last().Data["subscription_id"])
}

func TestSweepTargetedBoxHonorsWindow(t *testing.T) {
	f := setup(t)
	box := f.seedBox(t, boxdomain.Standard, 5, 10)
	start := f.clk.Now().AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 7)
	f.seedSubscription(t, "client-1", func(s *subscriptiondomain.Subscription) {
		id := box.ID
		s.BoxID = &id
		s.StartDate = &start
		s.EndDate = &end
	})

	// A pending reservation overlapping the requested window blocks the match
	// even though the box row itself is not occupied yet.
	require.NoError(t, f.db.Create(&reservationdomain.Reservation{
		ID:            f.node.Generate(),
		BoxID:         box.ID,
		ClientID:      "someone-else",
		StartDate:     start,
		EndDate:       end,
		Status:        reservationdomain.StatusPending,
		PaymentStatus: reservationdomain.PaymentPending,
		AccessCode:    "123456",
		CreatedAt:     f.clk.Now(),
		UpdatedAt:     f.clk.Now(),
	}).Error)

	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 0, f.notifier.count())
}

func TestSweepPagesThroughSubscriptions(t *testing.T) {
	f := setup(t)
	f.seedBox(t, boxdomain.Standard, 5, 10)
	for i := 0; i < 5; i++ {
		f.seedSubscription(t, fmt.Sprintf("client-%d", i), func(s *subscriptiondomain.Subscription) {
			bt := boxdomain.Standard
			s.BoxType = &bt
		})
	}

	// BatchSize is 2, so all five only show up if the cursor advances.
	require.NoError(t, f.mon.RunOnce(context.Background()))
	require.Equal(t, 5, f.notifier.count())
}

func TestSweepExpiresOverdueReservations(t *testing.T) {
	f := setup(t)
	f.resSvc.expired = 3

	require.NoError(t, f.mon.RunOnce(context.Background()))

	f.resSvc.mu.Lock()
	defer f.resSvc.mu.Unlock()
	require.Len(t, f.resSvc.calls, 1)
	require.Equal(t, f.clk.Now(), f.resSvc.calls[0])
}
