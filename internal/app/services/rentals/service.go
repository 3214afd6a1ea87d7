package rentals

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autorent/internal/app/outbox"
	"autorent/internal/domain/car"
	"autorent/internal/domain/rental"
	"autorent/internal/domain/shared/dates"
)

// AvailabilityPort is the availability checker contract consumed by the
// lifecycle manager.
type AvailabilityPort interface {
	IsCarBusy(ctx context.Context, carID string, p dates.Period) (bool, error)
}

// Service orchestrates the rental lifecycle: quoting, availability-checked
// creation, status transitions and soft deletion.
type Service struct {
	Rentals      rental.Repository
	Cars         car.Repository
	Availability AvailabilityPort
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Now          func() time.Time

	locks keyedLocks
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Rentals == nil:
		return errors.New("rentals: rental repository required")
	case s.Cars == nil:
		return errors.New("rentals: car repository required")
	case s.Availability == nil:
		return errors.New("rentals: availability checker required")
	default:
		return nil
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Quote prices a prospective rental without persisting anything.
func (s *Service) Quote(ctx context.Context, carID string, start, end time.Time) (rental.Quote, error) {
	if err := s.ensureDependencies(); err != nil {
		return rental.Quote{}, err
	}
	period, err := dates.New(start, end)
	if err != nil {
		return rental.Quote{}, err
	}
	now := s.now()
	if err := rental.ValidateBookingPeriod(period, now); err != nil {
		return rental.Quote{}, err
	}
	c, err := s.Cars.ActiveByID(ctx, car.ID(carID))
	if err != nil {
		return rental.Quote{}, err
	}
	return rental.ComputeQuote(c.PricePerDay, period, now)
}

// Create books a car for the owner. The availability check and the insert
// run under a per-car lock so two concurrent requests for overlapping
// periods admit exactly one booking.
func (s *Service) Create(ctx context.Context, creatorID, ownerID, carID string, start, end time.Time) (*rental.Rental, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	period, err := dates.New(start, end)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := rental.ValidateBookingPeriod(period, now); err != nil {
		return nil, err
	}
	c, err := s.Cars.ActiveByID(ctx, car.ID(carID))
	if err != nil {
		return nil, err
	}
	quote, err := rental.ComputeQuote(c.PricePerDay, period, now)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock("car:" + carID)
	defer unlock()

	busy, err := s.Availability.IsCarBusy(ctx, carID, period)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, rental.ErrCarUnavailable
	}

	r, err := rental.New(rental.CreateParams{
		ID:        rental.ID(uuid.NewString()),
		UserID:    ownerID,
		CarID:     carID,
		Period:    period,
		TotalCost: quote.TotalCost,
		CreatorID: creatorID,
		Now:       now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.Rentals.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.recordEvents(ctx, r); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("rental created", "rental_id", r.ID, "car_id", r.CarID, "user_id", r.UserID, "days", quote.Days, "total", r.TotalCost)
	}
	return r, nil
}

// SetStatus applies a lifecycle transition. A non-empty restrictToUserID
// scopes the lookup to rentals owned by that user, so clients cannot touch
// foreign bookings. The load-transition-save section runs under a
// per-rental lock so two concurrent transitions cannot both observe the
// same prior status.
func (s *Service) SetStatus(ctx context.Context, updaterID string, id rental.ID, next rental.Status, restrictToUserID string) (*rental.Rental, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}

	unlock := s.locks.lock("rental:" + string(id))
	defer unlock()

	r, err := s.Rentals.ByID(ctx, id, restrictToUserID)
	if err != nil {
		return nil, err
	}
	if err := r.ChangeStatus(next, updaterID, s.now()); err != nil {
		return nil, err
	}
	if err := s.Rentals.Save(ctx, r); err != nil {
		return nil, err
	}
	if err := s.recordEvents(ctx, r); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("rental status changed", "rental_id", r.ID, "status", r.Status)
	}
	return r, nil
}

// Delete soft-deletes the rental in any status.
func (s *Service) Delete(ctx context.Context, updaterID string, id rental.ID, restrictToUserID string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	r, err := s.Rentals.ByID(ctx, id, restrictToUserID)
	if err != nil {
		return err
	}
	r.SoftDelete(updaterID, s.now())
	if err := s.Rentals.Save(ctx, r); err != nil {
		return err
	}
	return s.recordEvents(ctx, r)
}

func (s *Service) Get(ctx context.Context, id rental.ID, restrictToUserID string) (*rental.Rental, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	return s.Rentals.ByID(ctx, id, restrictToUserID)
}

// List returns non-deleted rentals matching the filter. A period filter
// must be well-formed.
func (s *Service) List(ctx context.Context, f rental.Filter) ([]*rental.Rental, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if f.Period != nil {
		if err := f.Period.Validate(); err != nil {
			return nil, err
		}
	}
	return s.Rentals.List(ctx, f)
}

// IsBusy exposes the availability check to the request layer.
func (s *Service) IsBusy(ctx context.Context, carID string, start, end time.Time) (bool, error) {
	if err := s.ensureDependencies(); err != nil {
		return false, err
	}
	period, err := dates.New(start, end)
	if err != nil {
		return false, err
	}
	return s.Availability.IsCarBusy(ctx, carID, period)
}

func (s *Service) recordEvents(ctx context.Context, r *rental.Rental) error {
	pending := r.PendingEvents()
	r.ClearEvents()
	return outbox.RecordDomainEvents(ctx, s.Outbox, s.Encoder, pending)
}
