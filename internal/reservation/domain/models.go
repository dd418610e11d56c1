package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

var (
	StatusPending   Status = "PENDING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusExtended  Status = "EXTENDED"
	StatusExpired   Status = "EXPIRED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled, StatusExtended, StatusExpired:
		return true
	}
	return false
}

// Live reports whether a reservation in this status still holds the box.
// Live reservations are the ones that count for overlap conflicts.
func (s Status) Live() bool {
	switch s {
	case StatusPending, StatusActive, StatusExtended:
		return true
	}
	return false
}

// Terminal statuses admit no further transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

type PaymentStatus string

var (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
	PaymentFailed   PaymentStatus = "FAILED"
)

// Reservation holds a box for a client over a closed date window. TotalPrice
// is the tax-inclusive amount quoted at creation and recomputed on extension.
type Reservation struct {
	ID              snowflake.ID  `json:"id" gorm:"primaryKey"`
	BoxID           snowflake.ID  `json:"box_id" gorm:"column:box_id;not null;index"`
	ClientID        string        `json:"client_id" gorm:"type:text;not null;index"`
	StartDate       time.Time     `json:"start_date" gorm:"not null"`
	EndDate         time.Time     `json:"end_date" gorm:"not null"`
	Status          Status        `json:"status" gorm:"type:text;not null;index"`
	TotalPrice      float64       `json:"total_price" gorm:"type:numeric;not null"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`
	AccessCode      string        `json:"-" gorm:"column:access_code;type:text;not null"`
	PaymentStatus   PaymentStatus `json:"payment_status" gorm:"type:text;not null"`
	OriginalEndDate *time.Time    `json:"original_end_date,omitempty" gorm:"column:original_end_date"`
	ExtendedCount   int           `json:"extended_count" gorm:"not null;default:0"`
	LastAccessedAt  *time.Time    `json:"last_accessed_at,omitempty" gorm:"column:last_accessed_at"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }
