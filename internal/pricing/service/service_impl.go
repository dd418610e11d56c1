package service

import (
	"context"
	"fmt"
	"math"

	"github.com/warebox/warebox/internal/clock"
	pricingdomain "github.com/warebox/warebox/internal/pricing/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	loyaltyThreshold = 5
	loyaltyRatePer   = 0.02
	loyaltyRateCap   = 0.15

	longTermDays   = 30
	longTermRate   = 0.10
	mediumTermDays = 14
	mediumTermRate = 0.05

	earlyBirdDays = 14
	earlyBirdRate = 0.05

	taxRate = 0.20
)

type Service struct {
	log   *zap.Logger
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

func New(p ServiceParam) pricingdomain.Service {
	return &Service{
		log:   p.Log.Named("pricing.service"),
		clock: p.Clock,
	}
}

// Quote computes the price breakdown for a window. Every discount rate is
// applied against the original base price, then the sum is subtracted once.
func (s *Service) Quote(ctx context.Context, req pricingdomain.QuoteRequest) (*pricingdomain.Quote, error) {
	if !req.EndDate.After(req.StartDate) {
		return nil, pricingdomain.ErrInvalidWindow
	}
	if req.PricePerDay <= 0 {
		return nil, pricingdomain.ErrInvalidPrice
	}

	days := pricingdomain.CeilDays(req.StartDate, req.EndDate)
	basePrice := req.PricePerDay * float64(days)

	var discounts []pricingdomain.Discount

	if req.PriorCompleted >= loyaltyThreshold {
		rate := math.Min(loyaltyRateCap, float64(req.PriorCompleted)*loyaltyRatePer)
		discounts = append(discounts, pricingdomain.Discount{
			Type:   pricingdomain.Loyalty,
			Amount: basePrice * rate,
			Reason: fmt.Sprintf("Loyalty discount %d%% (%d completed rentals)", int(math.Round(rate*100)), req.PriorCompleted),
		})
	}

	switch {
	case days >= longTermDays:
		discounts = append(discounts, pricingdomain.Discount{
			Type:   pricingdomain.LongTerm,
			Amount: basePrice * longTermRate,
			Reason: fmt.Sprintf("Long-term discount 10%% (%d days)", days),
		})
	case days >= mediumTermDays:
		discounts = append(discounts, pricingdomain.Discount{
			Type:   pricingdomain.MediumTerm,
			Amount: basePrice * mediumTermRate,
			Reason: fmt.Sprintf("Medium-term discount 5%% (%d days)", days),
		})
	}

	daysInAdvance := pricingdomain.CeilDays(s.clock.Now(), req.StartDate)
	if daysInAdvance >= earlyBirdDays {
		discounts = append(discounts, pricingdomain.Discount{
			Type:   pricingdomain.EarlyBird,
			Amount: basePrice * earlyBirdRate,
			Reason: fmt.Sprintf("Early-bird discount 5%% (%d days in advance)", daysInAdvance),
		})
	}

	var totalDiscounts float64
	for _, d := range discounts {
		totalDiscounts += d.Amount
	}
	priceBeforeTax := basePrice - totalDiscounts
	if priceBeforeTax < 0 {
		priceBeforeTax = 0
	}
	taxAmount := priceBeforeTax * taxRate

	return &pricingdomain.Quote{
		BasePrice:      basePrice,
		Discounts:      discounts,
		TotalDiscounts: totalDiscounts,
		PriceBeforeTax: priceBeforeTax,
		TaxAmount:      taxAmount,
		FinalPrice:     priceBeforeTax + taxAmount,
		Days:           days,
		PricePerDay:    req.PricePerDay,
	}, nil
}
