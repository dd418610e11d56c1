package domain

import (
	"context"
	"errors"
)

type Service interface {
	List(ctx context.Context) ([]Warehouse, error)
	Get(ctx context.Context, id string) (*Warehouse, error)
	Upsert(ctx context.Context, adminID string, req UpsertRequest) (*Warehouse, error)
}

type UpsertRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

var (
	ErrNotFound    = errors.New("warehouse_not_found")
	ErrForbidden   = errors.New("warehouse_admin_required")
	ErrInvalidID   = errors.New("invalid_warehouse_id")
	ErrInvalidName = errors.New("invalid_warehouse_name")
)
