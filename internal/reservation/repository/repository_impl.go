package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	reservationdomain "github.com/warebox/warebox/internal/reservation/domain"
	"github.com/warebox/warebox/pkg/db"
	"gorm.io/gorm"
)

const reservationColumns = `id, box_id, client_id, start_date, end_date, status, total_price,
	 notes, access_code, payment_status, original_end_date, extended_count, last_accessed_at,
	 created_at, updated_at`

type repo struct{}

func Provide() reservationdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, res *reservationdomain.Reservation) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO reservations (
			id, box_id, client_id, start_date, end_date, status, total_price,
			notes, access_code, payment_status, original_end_date, extended_count, last_accessed_at,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.ID,
		res.BoxID,
		res.ClientID,
		res.StartDate,
		res.EndDate,
		res.Status,
		res.TotalPrice,
		res.Notes,
		res.AccessCode,
		res.PaymentStatus,
		res.OriginalEndDate,
		res.ExtendedCount,
		res.LastAccessedAt,
		res.CreatedAt,
		res.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, gdb *gorm.DB, res *reservationdomain.Reservation) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE reservations
		 SET start_date = ?, end_date = ?, status = ?, total_price = ?, notes = ?,
		     payment_status = ?, original_end_date = ?, extended_count = ?,
		     last_accessed_at = ?, updated_at = ?
		 WHERE id = ?`,
		res.StartDate,
		res.EndDate,
		res.Status,
		res.TotalPrice,
		res.Notes,
		res.PaymentStatus,
		res.OriginalEndDate,
		res.ExtendedCount,
		res.LastAccessedAt,
		res.UpdatedAt,
		res.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*reservationdomain.Reservation, error) {
	var res reservationdomain.Reservation
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`,
		id,
	).Scan(&res).Error
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, nil
	}
	return &res, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*reservationdomain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if db.SupportsRowLocks(tx) {
		query += " FOR UPDATE"
	}
	var res reservationdomain.Reservation
	err := tx.WithContext(ctx).Raw(query, id).Scan(&res).Error
	if err != nil {
		return nil, err
	}
	if res.ID == 0 {
		return nil, nil
	}
	return &res, nil
}

func (r *repo) ListByClient(ctx context.Context, gdb *gorm.DB, clientID string, status *reservationdomain.Status) ([]reservationdomain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE client_id = ?`
	args := []any{clientID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var items []reservationdomain.Reservation
	if err := gdb.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListRecentByClient(ctx context.Context, gdb *gorm.DB, clientID string, limit int) ([]reservationdomain.Reservation, error) {
	var items []reservationdomain.Reservation
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE client_id = ? AND status IN ('COMPLETED', 'ACTIVE')
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		clientID,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountByClientStatus(ctx context.Context, gdb *gorm.DB, clientID string, status reservationdomain.Status) (int, error) {
	var count int64
	err := gdb.WithContext(ctx).Raw(
		`SELECT COUNT(1) FROM reservations WHERE client_id = ? AND status = ?`,
		clientID,
		status,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repo) CountLiveByBox(ctx context.Context, tx *gorm.DB, boxID, excludeID snowflake.ID) (int, error) {
	var count int64
	err := tx.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM reservations
		 WHERE box_id = ? AND id != ? AND status IN ('PENDING', 'ACTIVE', 'EXTENDED')`,
		boxID,
		excludeID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *repo) ListOverdue(ctx context.Context, gdb *gorm.DB, now time.Time, limit int) ([]reservationdomain.Reservation, error) {
	var items []reservationdomain.Reservation
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+reservationColumns+`
		 FROM reservations
		 WHERE status IN ('PENDING', 'ACTIVE', 'EXTENDED') AND end_date < ?
		 ORDER BY end_date ASC, id ASC
		 LIMIT ?`,
		now,
		limit,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
