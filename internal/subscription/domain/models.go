package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	boxdomain "github.com/warebox/warebox/internal/box/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Subscription is a standing "notify me when available" request. All filter
// fields are optional but at least one must be set.
type Subscription struct {
	ID             snowflake.ID       `json:"id" gorm:"primaryKey"`
	ClientID       string             `json:"client_id" gorm:"type:text;not null;index"`
	BoxID          *snowflake.ID      `json:"box_id,omitempty" gorm:"column:box_id"`
	WarehouseID    *snowflake.ID      `json:"warehouse_id,omitempty" gorm:"column:warehouse_id"`
	BoxType        *boxdomain.BoxType `json:"box_type,omitempty" gorm:"column:box_type;type:text"`
	MinSize        *float64           `json:"min_size,omitempty" gorm:"column:min_size;type:numeric"`
	MaxPrice       *float64           `json:"max_price,omitempty" gorm:"column:max_price;type:numeric"`
	StartDate      *time.Time         `json:"start_date,omitempty" gorm:"column:start_date"`
	EndDate        *time.Time         `json:"end_date,omitempty" gorm:"column:end_date"`
	Active         bool               `json:"active" gorm:"not null;default:true"`
	LastNotifiedAt *time.Time         `json:"last_notified_at,omitempty" gorm:"column:last_notified_at"`
	Preferences    datatypes.JSONMap  `json:"preferences,omitempty" gorm:"column:preferences"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func (Subscription) TableName() string { return "box_availability_subscriptions" }

// HasCriteria reports whether any filter field is set. A subscription with no
// criteria would match every box and is rejected at creation.
func (s *Subscription) HasCriteria() bool {
	return s.BoxID != nil || s.WarehouseID != nil || s.BoxType != nil ||
		s.MinSize != nil || s.MaxPrice != nil ||
		(s.StartDate != nil && s.EndDate != nil)
}

type CreateRequest struct {
	ClientID    string             `json:"client_id"`
	BoxID       *string            `json:"box_id,omitempty"`
	WarehouseID *string            `json:"warehouse_id,omitempty"`
	BoxType     *boxdomain.BoxType `json:"box_type,omitempty"`
	MinSize     *float64           `json:"min_size,omitempty"`
	MaxPrice    *float64           `json:"max_price,omitempty"`
	StartDate   *time.Time         `json:"start_date,omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	Preferences map[string]any     `json:"preferences,omitempty"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	ListByClient(ctx context.Context, db *gorm.DB, clientID string) ([]Subscription, error)
	// ListActive pages through active subscriptions in ID order for sweeps.
	ListActive(ctx context.Context, db *gorm.DB, afterID snowflake.ID, limit int) ([]Subscription, error)
	SetActive(ctx context.Context, db *gorm.DB, id snowflake.ID, active bool, updatedAt time.Time) error
	UpdateLastNotified(ctx context.Context, db *gorm.DB, id snowflake.ID, notifiedAt time.Time) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Subscription, error)
	List(ctx context.Context, clientID string) ([]Subscription, error)
	Deactivate(ctx context.Context, id string, requesterID string) (*Subscription, error)
}

var (
	ErrNotFound      = errors.New("subscription_not_found")
	ErrForbidden     = errors.New("subscription_forbidden")
	ErrInvalidID     = errors.New("invalid_subscription_id")
	ErrInvalidClient = errors.New("invalid_subscription_client")
	ErrNoCriteria    = errors.New("subscription_requires_criteria")
	ErrInvalidWindow = errors.New("invalid_subscription_window")
	ErrInvalidType   = errors.New("invalid_subscription_box_type")
	ErrPartialWindow = errors.New("subscription_window_requires_both_dates")
)
