package rental

import (
	"errors"
	"time"

	"autorent/internal/domain/shared/dates"
	"autorent/internal/domain/shared/money"
)

var (
	ErrInvalidPeriod  = errors.New("rental: start date must not be before today and not after end date")
	ErrPeriodTooLong  = errors.New("rental: period exceeds the maximum rentable span")
	ErrCarUnavailable = errors.New("rental: car is busy in the requested period")
)

// MaxRentalDays caps a single rental span, endpoints included.
const MaxRentalDays = 60

const (
	longTermDays    = 30
	longTermPercent = 15
	weeklyDays      = 7
	weeklyPercent   = 10
	msgLongTerm     = "30+ day discount applied"
	msgWeekly       = "7+ day discount applied"
	msgNoDiscount   = "No discount applicable"
)

// Quote is the transient price breakdown for a prospective rental. It is
// never persisted; Create copies only TotalCost into the rental.
type Quote struct {
	Days      int         `json:"days"`
	FullCost  money.Money `json:"full_cost"`
	Discount  money.Money `json:"discount"`
	TotalCost money.Money `json:"total_cost"`
	Message   string      `json:"message"`
}

// ValidateBookingPeriod enforces the booking preconditions: a well-formed
// period starting today or later that does not exceed MaxRentalDays.
func ValidateBookingPeriod(p dates.Period, now time.Time) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Start.Before(dates.Today(now)) {
		return ErrInvalidPeriod
	}
	if p.Days() > MaxRentalDays {
		return ErrPeriodTooLong
	}
	return nil
}

// ComputeQuote prices a period at the given daily rate. Pure: the only
// inputs are the arguments. Discount tiers are evaluated in order, first
// match wins, and the discount is rounded to whole minor units before
// subtraction.
func ComputeQuote(pricePerDay money.Money, p dates.Period, now time.Time) (Quote, error) {
	if err := ValidateBookingPeriod(p, now); err != nil {
		return Quote{}, err
	}
	days := p.Days()

	full := pricePerDay.Multiply(int64(days))

	var discount money.Money
	message := msgNoDiscount
	switch {
	case days >= longTermDays:
		discount = full.Percent(longTermPercent)
		message = msgLongTerm
	case days >= weeklyDays:
		discount = full.Percent(weeklyPercent)
		message = msgWeekly
	default:
		discount = money.Money{Currency: full.Currency}
	}

	total, err := full.Sub(discount)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Days:      days,
		FullCost:  full,
		Discount:  discount,
		TotalCost: total,
		Message:   message,
	}, nil
}
