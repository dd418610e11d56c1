package domain

import (
	"context"
	"errors"
	"time"
)

type CreateRequest struct {
	BoxID     string    `json:"box_id"`
	ClientID  string    `json:"client_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Notes     string    `json:"notes,omitempty"`
}

type UpdateRequest struct {
	EndDate *time.Time `json:"end_date,omitempty"`
	Status  *Status    `json:"status,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}

type ExtendRequest struct {
	NewEndDate time.Time `json:"new_end_date"`
}

// ExtendResult reports what the extension added on top of the running total.
type ExtendResult struct {
	Reservation     *Reservation `json:"reservation"`
	AdditionalDays  int          `json:"additional_days"`
	AdditionalPrice float64      `json:"additional_price"`
}

type AccessResult struct {
	Reservation *Reservation `json:"reservation"`
	AccessedAt  time.Time    `json:"accessed_at"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	Get(ctx context.Context, id string, requesterID string) (*Reservation, error)
	Update(ctx context.Context, id string, requesterID string, req UpdateRequest) (*Reservation, error)
	Extend(ctx context.Context, id string, requesterID string, req ExtendRequest) (*ExtendResult, error)
	Cancel(ctx context.Context, id string, requesterID string) (*Reservation, error)
	AccessBox(ctx context.Context, id string, requesterID string, accessCode string) (*AccessResult, error)
	ListByClient(ctx context.Context, clientID string, status *Status) ([]Reservation, error)
	// ExpireOverdue marks live reservations past their end date as EXPIRED
	// and releases their boxes. Returns the number of reservations expired.
	ExpireOverdue(ctx context.Context, now time.Time, limit int) (int, error)
}

var (
	ErrNotFound       = errors.New("reservation_not_found")
	ErrBoxNotFound    = errors.New("reservation_box_not_found")
	ErrForbidden      = errors.New("reservation_forbidden")
	ErrBoxUnavailable = errors.New("box_unavailable")
	ErrInvalidID      = errors.New("invalid_reservation_id")
	ErrInvalidWindow  = errors.New("invalid_reservation_window")
	ErrInvalidClient  = errors.New("invalid_client_id")
	ErrInvalidStatus  = errors.New("invalid_reservation_status")
	ErrTerminalState  = errors.New("reservation_in_terminal_state")
	ErrNotExtension   = errors.New("new_end_date_not_after_current")
	ErrWrongCode      = errors.New("invalid_access_code")
)
