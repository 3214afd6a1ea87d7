package availability

import (
	"context"
	"errors"

	"autorent/internal/domain/rental"
	"autorent/internal/domain/shared/dates"
)

var ErrRepositoryRequired = errors.New("availability: rental repository required")

// Checker answers whether a car already has a conflicting rental for a
// requested period. Read-only; the sole source of truth is the rental
// repository.
type Checker struct {
	Rentals rental.Repository
}

// IsCarBusy reports a conflict when any non-deleted rental of the car
// overlaps the inclusive period and still blocks the car (pending or
// active). Completed and cancelled rentals never conflict.
func (c Checker) IsCarBusy(ctx context.Context, carID string, p dates.Period) (bool, error) {
	if c.Rentals == nil {
		return false, ErrRepositoryRequired
	}
	if err := p.Validate(); err != nil {
		return false, err
	}
	overlapping, err := c.Rentals.OverlappingForCar(ctx, carID, p)
	if err != nil {
		return false, err
	}
	for _, r := range overlapping {
		if r.Status.Blocking() {
			return true, nil
		}
	}
	return false, nil
}
