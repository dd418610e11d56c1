package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriptiondomain "github.com/warebox/warebox/internal/subscription/domain"
	"gorm.io/gorm"
)

const subscriptionColumns = `id, client_id, box_id, warehouse_id, box_type, min_size, max_price,
	 start_date, end_date, active, last_notified_at, preferences, created_at, updated_at`

type repo struct{}

func Provide() subscriptiondomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, sub *subscriptiondomain.Subscription) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO box_availability_subscriptions (
			id, client_id, box_id, warehouse_id, box_type, min_size, max_price,
			start_date, end_date, active, last_notified_at, preferences, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID,
		sub.ClientID,
		sub.BoxID,
		sub.WarehouseID,
		sub.BoxType,
		sub.MinSize,
		sub.MaxPrice,
		sub.StartDate,
		sub.EndDate,
		sub.Active,
		sub.LastNotifiedAt,
		sub.Preferences,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	var sub subscriptiondomain.Subscription
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+` FROM box_availability_subscriptions WHERE id = ?`,
		id,
	).Scan(&sub).Error
	if err != nil {
		return nil, err
	}
	if sub.ID == 0 {
		return nil, nil
	}
	return &sub, nil
}

func (r *repo) ListByClient(ctx context.Context, gdb *gorm.DB, clientID string) ([]subscriptiondomain.Subscription, error) {
	var items []subscriptiondomain.Subscription
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM box_availability_subscriptions
		 WHERE client_id = ?
		 ORDER BY created_at DESC, id DESC`,
		clientID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListActive(ctx context.Context, gdb *gorm.DB, afterID snowflake.ID, limit int) ([]subscriptiondomain.Subscription, error) {
	var items []subscriptiondomain.Subscription
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+subscriptionColumns+`
		 FROM box_availability_subscriptions
		 WHERE active = ? AND id > ?
		 ORDER BY id ASC
		 LIMIT ?`,
		true,
		afterID,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetActive(ctx context.Context, gdb *gorm.DB, id snowflake.ID, active bool, updatedAt time.Time) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE box_availability_subscriptions SET active = ?, updated_at = ? WHERE id = ?`,
		active,
		updatedAt,
		id,
	).Error
}

func (r *repo) UpdateLastNotified(ctx context.Context, gdb *gorm.DB, id snowflake.ID, notifiedAt time.Time) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE box_availability_subscriptions SET last_notified_at = ?, updated_at = ? WHERE id = ?`,
		notifiedAt,
		notifiedAt,
		id,
	).Error
}
