package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, r *Reservation) error
	Update(ctx context.Context, db *gorm.DB, r *Reservation) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Reservation, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Reservation, error)
	ListByClient(ctx context.Context, db *gorm.DB, clientID string, status *Status) ([]Reservation, error)
	// ListRecentByClient returns the newest reservations in COMPLETED or
	// ACTIVE status, capped at limit, newest first.
	ListRecentByClient(ctx context.Context, db *gorm.DB, clientID string, limit int) ([]Reservation, error)
	CountByClientStatus(ctx context.Context, db *gorm.DB, clientID string, status Status) (int, error)
	// CountLiveByBox counts reservations still holding the box, optionally
	// skipping one reservation by ID (pass 0 to skip none).
	CountLiveByBox(ctx context.Context, tx *gorm.DB, boxID, excludeID snowflake.ID) (int, error)
	// ListOverdue returns live reservations whose end date has passed.
	ListOverdue(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Reservation, error)
}
