package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/warebox/warebox/internal/availability"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/internal/clock"
	"github.com/warebox/warebox/internal/observability"
	"github.com/warebox/warebox/internal/providers/notification"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("monitor_invalid_config")

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Clock          clock.Clock
	SubRepo        subscriptiondomain.Repository
	BoxRepo        boxdomain.Repository
	Checker        availability.Checker
	ReservationSvc reservationdomain.Service
	Notifier       notification.Provider
	Metrics        *observability.Metrics
	Config         Config `optional:"true"`
}

// Monitor sweeps active availability subscriptions against current inventory
// and expires overdue reservations.
type Monitor struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	subRepo  subscriptiondomain.Repository
	boxRepo  boxdomain.Repository
	checker  availability.Checker
	resSvc   reservationdomain.Service
	notifier notification.Provider
	metrics  *observability.Metrics
}

func New(p Params) (*Monitor, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.SubRepo == nil || p.BoxRepo == nil || p.Checker == nil || p.ReservationSvc == nil || p.Notifier == nil || p.Metrics == nil {
		return nil, ErrInvalidConfig
	}
	return &Monitor{
		db:       p.DB,
		log:      p.Log.Named("monitor").With(zap.String("component", "monitor")),
		cfg:      p.Config.withDefaults(),
		clock:    p.Clock,
		subRepo:  p.SubRepo,
		boxRepo:  p.BoxRepo,
		checker:  p.Checker,
		resSvc:   p.ReservationSvc,
		notifier: p.Notifier,
		metrics:  p.Metrics,
	}, nil
}

func (m *Monitor) RunOnce(ctx context.Context) error {
	start := m.clock.Now()
	err := errors.Join(
		m.matchSubscriptionsJob(ctx),
		m.expireReservationsJob(ctx),
	)
	m.metrics.MonitorRuns.Inc()
	m.metrics.MonitorDuration.Observe(m.clock.Now().Sub(start).Seconds())
	return err
}

func (m *Monitor) RunForever(ctx context.Context) {
	ticker := time.NewTicker(m.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := m.RunOnce(ctx); err != nil {
			m.log.Warn("monitor run failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// matchSubscriptionsJob pages through active subscriptions. A failure on one
// subscription is logged and skipped so the rest of the sweep proceeds.
func (m *Monitor) matchSubscriptionsJob(ctx context.Context) error {
	var cursor snowflake.ID
	for {
		page, err := m.subRepo.ListActive(ctx, m.db, cursor, m.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("list active subscriptions: %w", err)
		}
		if len(page) == 0 {
			return nil
		}
		for i := range page {
			sub := &page[i]
			if err := m.evaluate(ctx, sub); err != nil {
				m.metrics.MonitorFailures.Inc()
				m.log.Warn("subscription evaluation failed",
					zap.String("subscription_id", sub.ID.String()),
					zap.Error(err),
				)
			}
		}
		cursor = page[len(page)-1].ID
		if len(page) < m.cfg.BatchSize {
			return nil
		}
	}
}

func (m *Monitor) evaluate(ctx context.Context, sub *subscriptiondomain.Subscription) error {
	now := m.clock.Now()
	if sub.LastNotifiedAt != nil && now.Sub(*sub.LastNotifiedAt) < m.cfg.NotifyCooldown {
		return nil
	}

	matches, err := m.findMatches(ctx, sub)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}

	boxIDs := make([]string, 0, len(matches))
	for _, b := range matches {
		boxIDs = append(boxIDs, b.ID.String())
	}
	err = m.notifier.Send(ctx, notification.Notification{
		ClientID: sub.ClientID,
		Title:    "Storage box available",
		Message:  fmt.Sprintf("%d box(es) matching your request are now available", len(matches)),
		Data: map[string]any{
			"subscription_id": sub.ID.String(),
			"box_ids":         boxIDs,
		},
	})
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	m.metrics.NotificationsSent.Inc()

	if err := m.subRepo.UpdateLastNotified(ctx, m.db, sub.ID, now); err != nil {
		return fmt.Errorf("update last notified: %w", err)
	}
	notified := now
	sub.LastNotifiedAt = &notified
	return nil
}

func (m *Monitor) findMatches(ctx context.Context, sub *subscriptiondomain.Subscription) ([]boxdomain.Box, error) {
	if sub.BoxID != nil {
		b, err := m.boxRepo.FindByID(ctx, m.db, *sub.BoxID)
		if err != nil {
			return nil, err
		}
		if b == nil || b.Occupied || b.Status != boxdomain.StatusAvailable {
			return nil, nil
		}
		if sub.StartDate != nil && sub.EndDate != nil {
			free, err := m.checker.IsBoxAvailable(ctx, m.db, b.ID, *sub.StartDate, *sub.EndDate)
			if err != nil {
				return nil, err
			}
			if !free {
				return nil, nil
			}
		}
		return []boxdomain.Box{*b}, nil
	}

	filter := boxdomain.SearchFilter{
		WarehouseID: sub.WarehouseID,
		BoxType:     sub.BoxType,
		MinSize:     sub.MinSize,
		MaxPrice:    sub.MaxPrice,
		Start:       sub.StartDate,
		End:         sub.EndDate,
		Limit:       m.cfg.MatchLimit,
	}
	return m.boxRepo.Search(ctx, m.db, filter)
}

func (m *Monitor) expireReservationsJob(ctx context.Context) error {
	expired, err := m.resSvc.ExpireOverdue(ctx, m.clock.Now(), m.cfg.ExpireLimit)
	if err != nil {
		return fmt.Errorf("expire overdue reservations: %w", err)
	}
	if expired > 0 {
		m.log.Info("expired overdue reservations", zap.Int("count", expired))
	}
	return nil
}

var Module = fx.Module("monitor",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// Run wires the sweep loop into the fx lifecycle.
func Run(lc fx.Lifecycle, mon *Monitor) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			go mon.RunForever(ctx)
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})
			return nil
		},
	})
}
