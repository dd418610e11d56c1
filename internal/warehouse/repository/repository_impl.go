package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	warehousedomain "github.com/warebox/warebox/internal/warehouse/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() warehousedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, w *warehousedomain.Warehouse) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO warehouses (
			id, name, location, address, description, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID,
		w.Name,
		w.Location,
		w.Address,
		w.Description,
		w.Active,
		w.CreatedAt,
		w.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, w *warehousedomain.Warehouse) error {
	return db.WithContext(ctx).Exec(
		`UPDATE warehouses
		 SET name = ?, location = ?, address = ?, description = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		w.Name,
		w.Location,
		w.Address,
		w.Description,
		w.Active,
		w.UpdatedAt,
		w.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*warehousedomain.Warehouse, error) {
	var w warehousedomain.Warehouse
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, location, address, description, active, created_at, updated_at
		 FROM warehouses WHERE id = ?`,
		id,
	).Scan(&w).Error
	if err != nil {
		return nil, err
	}
	if w.ID == 0 {
		return nil, nil
	}
	return &w, nil
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB) ([]warehousedomain.Warehouse, error) {
	var items []warehousedomain.Warehouse
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, location, address, description, active, created_at, updated_at
		 FROM warehouses WHERE active = ? ORDER BY name ASC`,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
