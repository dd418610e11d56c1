package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	usagelogdomain "github.com/warebox/warebox/internal/usagelog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() usagelogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, e *usagelogdomain.Entry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO box_usage_history (
			id, box_id, reservation_id, client_id, action_type, action_time, details
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.BoxID,
		e.ReservationID,
		e.ClientID,
		e.ActionType,
		e.ActionTime,
		e.Details,
	).Error
}

func (r *repo) ListByBox(ctx context.Context, db *gorm.DB, boxID snowflake.ID) ([]usagelogdomain.Entry, error) {
	var items []usagelogdomain.Entry
	err := db.WithContext(ctx).Raw(
		`SELECT id, box_id, reservation_id, client_id, action_type, action_time, details
		 FROM box_usage_history
		 WHERE box_id = ?
		 ORDER BY action_time DESC, id DESC`,
		boxID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
