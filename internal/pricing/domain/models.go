package domain

import (
	"context"
	"errors"
	"math"
	"time"
)

type DiscountType string

var (
	Loyalty    DiscountType = "LOYALTY"
	LongTerm   DiscountType = "LONG_TERM"
	MediumTerm DiscountType = "MEDIUM_TERM"
	EarlyBird  DiscountType = "EARLY_BIRD"
)

type QuoteRequest struct {
	PricePerDay    float64   `json:"price_per_day"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	PriorCompleted int       `json:"prior_completed"`
}

type Discount struct {
	Type   DiscountType `json:"type"`
	Amount float64      `json:"amount"`
	Reason string       `json:"reason"`
}

// Quote is the full price breakdown for a rental window.
type Quote struct {
	BasePrice      float64    `json:"base_price"`
	Discounts      []Discount `json:"discounts"`
	TotalDiscounts float64    `json:"total_discounts"`
	PriceBeforeTax float64    `json:"price_before_tax"`
	TaxAmount      float64    `json:"tax_amount"`
	FinalPrice     float64    `json:"final_price"`
	Days           int        `json:"days"`
	PricePerDay    float64    `json:"price_per_day"`
}

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (*Quote, error)
}

var (
	ErrInvalidWindow = errors.New("invalid_pricing_window")
	ErrInvalidPrice  = errors.New("invalid_price_per_day")
)

// CeilDays counts whole days between two instants, rounding partial days up.
// A non-positive span yields zero.
func CeilDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}
