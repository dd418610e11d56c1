package availability

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Overlaps reports whether two closed date windows intersect. Boundaries are
// inclusive: back-to-back windows sharing an exact boundary date conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !e1.Before(s2)
}

// Checker answers whether a box is free for a window. It has no side effects
// and accepts the database handle explicitly so it can run standalone or as a
// guard inside a write transaction.
type Checker interface {
	IsBoxAvailable(ctx context.Context, db *gorm.DB, boxID snowflake.ID, start, end time.Time) (bool, error)
	IsBoxAvailableExcluding(ctx context.Context, db *gorm.DB, boxID, excludeReservationID snowflake.ID, start, end time.Time) (bool, error)
}

type checker struct{}

func NewChecker() Checker {
	return &checker{}
}

func (c *checker) IsBoxAvailable(ctx context.Context, db *gorm.DB, boxID snowflake.ID, start, end time.Time) (bool, error) {
	return c.IsBoxAvailableExcluding(ctx, db, boxID, 0, start, end)
}

// IsBoxAvailableExcluding ignores one reservation while checking, which lets
// an extension validate its delta window without colliding with itself.
func (c *checker) IsBoxAvailableExcluding(ctx context.Context, db *gorm.DB, boxID, excludeReservationID snowflake.ID, start, end time.Time) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM reservations
		 WHERE box_id = ?
		   AND id != ?
		   AND status IN ('PENDING', 'ACTIVE', 'EXTENDED')
		   AND start_date <= ? AND end_date >= ?`,
		boxID,
		excludeReservationID,
		end,
		start,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// Module provides the availability checker.
var Module = fx.Module("availability",
	fx.Provide(NewChecker),
)
