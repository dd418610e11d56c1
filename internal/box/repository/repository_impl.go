package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"github.com/warebox/warebox/pkg/db"
	"gorm.io/gorm"
)

const boxColumns = `id, warehouse_id, name, box_type, size, price_per_day, occupied, status,
	 features, description, location_description, floor_level, max_weight, dimensions,
	 created_at, updated_at`

// noReservationConflict excludes boxes with a live reservation intersecting
// the window. Placeholders: end, start (inclusive boundary on both sides).
const noReservationConflict = ` AND NOT EXISTS (
		SELECT 1 FROM reservations r
		WHERE r.box_id = boxes.id
		  AND r.status IN ('PENDING', 'ACTIVE', 'EXTENDED')
		  AND r.start_date <= ? AND r.end_date >= ?
	 )`

type repo struct{}

func Provide() boxdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, gdb *gorm.DB, b *boxdomain.Box) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO boxes (
			id, warehouse_id, name, box_type, size, price_per_day, occupied, status,
			features, description, location_description, floor_level, max_weight, dimensions,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.WarehouseID,
		b.Name,
		b.BoxType,
		b.Size,
		b.PricePerDay,
		b.Occupied,
		b.Status,
		b.Features,
		b.Description,
		b.LocationDescription,
		b.FloorLevel,
		b.MaxWeight,
		b.Dimensions,
		b.CreatedAt,
		b.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, gdb *gorm.DB, b *boxdomain.Box) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE boxes
		 SET warehouse_id = ?, name = ?, box_type = ?, size = ?, price_per_day = ?,
		     occupied = ?, status = ?, features = ?, description = ?,
		     location_description = ?, floor_level = ?, max_weight = ?, dimensions = ?,
		     updated_at = ?
		 WHERE id = ?`,
		b.WarehouseID,
		b.Name,
		b.BoxType,
		b.Size,
		b.PricePerDay,
		b.Occupied,
		b.Status,
		b.Features,
		b.Description,
		b.LocationDescription,
		b.FloorLevel,
		b.MaxWeight,
		b.Dimensions,
		b.UpdatedAt,
		b.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id snowflake.ID) (*boxdomain.Box, error) {
	var b boxdomain.Box
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+boxColumns+` FROM boxes WHERE id = ?`,
		id,
	).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*boxdomain.Box, error) {
	query := `SELECT ` + boxColumns + ` FROM boxes WHERE id = ?`
	if db.SupportsRowLocks(tx) {
		query += " FOR UPDATE"
	}
	var b boxdomain.Box
	err := tx.WithContext(ctx).Raw(query, id).Scan(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == 0 {
		return nil, nil
	}
	return &b, nil
}

func (r *repo) FindByIDs(ctx context.Context, gdb *gorm.DB, ids []snowflake.ID) ([]boxdomain.Box, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []boxdomain.Box
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+boxColumns+` FROM boxes WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListByWarehouse(ctx context.Context, gdb *gorm.DB, warehouseID snowflake.ID) ([]boxdomain.Box, error) {
	var items []boxdomain.Box
	err := gdb.WithContext(ctx).Raw(
		`SELECT `+boxColumns+` FROM boxes WHERE warehouse_id = ? ORDER BY name ASC`,
		warehouseID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Search(ctx context.Context, gdb *gorm.DB, f boxdomain.SearchFilter) ([]boxdomain.Box, error) {
	var (
		conds = []string{"occupied = ?"}
		args  = []any{false}
	)
	if f.WarehouseID != nil {
		conds = append(conds, "warehouse_id = ?")
		args = append(args, *f.WarehouseID)
	}
	if f.BoxType != nil {
		conds = append(conds, "box_type = ?")
		args = append(args, *f.BoxType)
	}
	if f.MinSize != nil {
		conds = append(conds, "size >= ?")
		args = append(args, *f.MinSize)
	}
	if f.MaxSize != nil {
		conds = append(conds, "size <= ?")
		args = append(args, *f.MaxSize)
	}
	if f.MaxPrice != nil {
		conds = append(conds, "price_per_day <= ?")
		args = append(args, *f.MaxPrice)
	}
	for _, feature := range f.Features {
		conds = append(conds, "features LIKE ?")
		args = append(args, `%"`+feature+`"%`)
	}

	where := strings.Join(conds, " AND ")
	if f.Start != nil && f.End != nil {
		where += noReservationConflict
		args = append(args, *f.End, *f.Start)
	}

	query := fmt.Sprintf(
		`SELECT %s FROM boxes WHERE %s ORDER BY price_per_day ASC, size ASC, id ASC`,
		boxColumns,
		where,
	)
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var items []boxdomain.Box
	if err := gdb.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindCandidates(ctx context.Context, gdb *gorm.DB, f boxdomain.CandidateFilter) ([]boxdomain.Box, error) {
	conds := []string{"id != ?", "occupied = ?", "size >= ?", "size <= ?", "price_per_day <= ?"}
	args := []any{f.ExcludeBoxID, false, f.MinSize, f.MaxSize, f.MaxPrice}
	if f.WarehouseID != nil {
		conds = append(conds, "warehouse_id = ?")
		args = append(args, *f.WarehouseID)
	}
	if f.ExcludeWarehouseID != nil {
		conds = append(conds, "warehouse_id != ?")
		args = append(args, *f.ExcludeWarehouseID)
	}
	if f.BoxType != nil {
		conds = append(conds, "box_type = ?")
		args = append(args, *f.BoxType)
	}

	where := strings.Join(conds, " AND ") + noReservationConflict
	args = append(args, f.End, f.Start)

	query := fmt.Sprintf(
		`SELECT %s FROM boxes WHERE %s ORDER BY price_per_day ASC, size ASC, id ASC`,
		boxColumns,
		where,
	)
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	var items []boxdomain.Box
	if err := gdb.WithContext(ctx).Raw(query, args...).Scan(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) SetOccupied(ctx context.Context, tx *gorm.DB, id snowflake.ID, occupied bool, status boxdomain.BoxStatus) error {
	return tx.WithContext(ctx).Exec(
		`UPDATE boxes SET occupied = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		occupied,
		status,
		id,
	).Error
}
