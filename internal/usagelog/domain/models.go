package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ActionType string

var (
	ReservationCreated   ActionType = "RESERVATION_CREATED"
	ReservationUpdated   ActionType = "RESERVATION_UPDATED"
	ReservationCancelled ActionType = "RESERVATION_CANCELLED"
	BoxAccessed          ActionType = "BOX_ACCESSED"
	BoxClosed            ActionType = "BOX_CLOSED"
	PaymentProcessed     ActionType = "PAYMENT_PROCESSED"
	ExtendedRental       ActionType = "EXTENDED_RENTAL"
	InspectionCompleted  ActionType = "INSPECTION_COMPLETED"
)

// Entry is a write-once audit record of an action taken against a box.
type Entry struct {
	ID            snowflake.ID  `json:"id" gorm:"primaryKey"`
	BoxID         snowflake.ID  `json:"box_id" gorm:"column:box_id;not null;index"`
	ReservationID *snowflake.ID `json:"reservation_id,omitempty" gorm:"column:reservation_id"`
	ClientID      string        `json:"client_id" gorm:"type:text;not null;index"`
	ActionType    ActionType    `json:"action_type" gorm:"type:text;not null"`
	ActionTime    time.Time     `json:"action_time" gorm:"not null"`
	Details       string        `json:"details,omitempty" gorm:"type:text"`
}

func (Entry) TableName() string { return "box_usage_history" }

type Record struct {
	BoxID         snowflake.ID
	ReservationID *snowflake.ID
	ClientID      string
	ActionType    ActionType
	Details       string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, e *Entry) error
	ListByBox(ctx context.Context, db *gorm.DB, boxID snowflake.ID) ([]Entry, error)
}

type Service interface {
	// Log appends an entry best-effort: failures are logged, never returned,
	// so a missing audit line cannot roll back the primary state change.
	Log(ctx context.Context, rec Record)
	History(ctx context.Context, boxID string, requesterID string) ([]Entry, error)
}

var (
	ErrForbidden = errors.New("usage_history_forbidden")
	ErrInvalidID = errors.New("invalid_usage_box_id")
)
