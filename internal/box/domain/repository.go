package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SearchFilter narrows the box search. Nil fields are skipped so matching
// stays exhaustive over the fields that are set.
type SearchFilter struct {
	WarehouseID *snowflake.ID
	BoxType     *BoxType
	MinSize     *float64
	MaxSize     *float64
	MaxPrice    *float64
	Features    []string
	Start       *time.Time
	End         *time.Time
	Limit       int
}

// CandidateFilter selects substitute candidates for the alternative finder.
type CandidateFilter struct {
	ExcludeBoxID       snowflake.ID
	WarehouseID        *snowflake.ID
	ExcludeWarehouseID *snowflake.ID
	BoxType            *BoxType
	MinSize            float64
	MaxSize            float64
	MaxPrice           float64
	Start              time.Time
	End                time.Time
	Limit              int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, b *Box) error
	Update(ctx context.Context, db *gorm.DB, b *Box) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Box, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id snowflake.ID) (*Box, error)
	FindByIDs(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]Box, error)
	ListByWarehouse(ctx context.Context, db *gorm.DB, warehouseID snowflake.ID) ([]Box, error)
	Search(ctx context.Context, db *gorm.DB, f SearchFilter) ([]Box, error)
	FindCandidates(ctx context.Context, db *gorm.DB, f CandidateFilter) ([]Box, error)
	SetOccupied(ctx context.Context, tx *gorm.DB, id snowflake.ID, occupied bool, status BoxStatus) error
}
