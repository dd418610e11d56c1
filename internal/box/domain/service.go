package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Search(ctx context.Context, req SearchRequest) ([]Box, error)
	Get(ctx context.Context, id string) (*Box, error)
	ListWarehouseBoxes(ctx context.Context, warehouseID string) ([]Box, error)
	Upsert(ctx context.Context, adminID string, req UpsertRequest) (*Box, error)
}

type SearchRequest struct {
	WarehouseID string     `json:"warehouse_id"`
	BoxType     *BoxType   `json:"box_type"`
	MinSize     *float64   `json:"min_size"`
	MaxSize     *float64   `json:"max_size"`
	MaxPrice    *float64   `json:"max_price"`
	Features    []string   `json:"features"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

type UpsertRequest struct {
	ID                  string     `json:"id"`
	WarehouseID         string     `json:"warehouse_id"`
	Name                string     `json:"name"`
	BoxType             BoxType    `json:"box_type"`
	Size                float64    `json:"size"`
	PricePerDay         float64    `json:"price_per_day"`
	Features            []string   `json:"features"`
	Description         string     `json:"description"`
	LocationDescription string     `json:"location_description"`
	FloorLevel          int        `json:"floor_level"`
	MaxWeight           float64    `json:"max_weight"`
	Dimensions          string     `json:"dimensions"`
	Status              *BoxStatus `json:"status"`
}

var (
	ErrNotFound          = errors.New("box_not_found")
	ErrWarehouseNotFound = errors.New("box_warehouse_not_found")
	ErrForbidden         = errors.New("box_admin_required")
	ErrInvalidID         = errors.New("invalid_box_id")
	ErrInvalidName       = errors.New("invalid_box_name")
	ErrInvalidType       = errors.New("invalid_box_type")
	ErrInvalidStatus     = errors.New("invalid_box_status")
	ErrInvalidSize       = errors.New("invalid_box_size")
	ErrInvalidPrice      = errors.New("invalid_box_price")
	ErrInvalidWindow     = errors.New("invalid_search_window")
)
