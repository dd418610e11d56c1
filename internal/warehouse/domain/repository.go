package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, w *Warehouse) error
	Update(ctx context.Context, db *gorm.DB, w *Warehouse) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Warehouse, error)
	ListActive(ctx context.Context, db *gorm.DB) ([]Warehouse, error)
}
