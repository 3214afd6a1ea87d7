package rental

import (
	"context"
	"errors"
	"strings"
	"time"

	"autorent/internal/domain/shared/dates"
	"autorent/internal/domain/shared/events"
	"autorent/internal/domain/shared/meta"
	"autorent/internal/domain/shared/money"
)

var (
	ErrNotFound          = errors.New("rental: not found")
	ErrInvalidStatus     = errors.New("rental: unknown status")
	ErrInvalidTransition = errors.New("rental: status change not permitted")
	ErrUserRequired      = errors.New("rental: user id required")
	ErrCarRequired       = errors.New("rental: car id required")
	ErrCostNotPositive   = errors.New("rental: total cost must be positive")
)

type ID string

type Status string

const (
	StatusPending   Status = "pending"   // booked, car not yet handed over
	StatusActive    Status = "active"    // car is with the client
	StatusCompleted Status = "completed" // returned
	StatusCancelled Status = "cancelled"
)

// transitions is the full lifecycle table. completed and cancelled are
// terminal; self-transitions are not permitted.
var transitions = map[Status][]Status{
	StatusPending: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted},
}

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransition reports whether the lifecycle table allows from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// Blocking reports whether a rental in this status occupies the car for
// availability purposes.
func (s Status) Blocking() bool {
	return s == StatusPending || s == StatusActive
}

type Rental struct {
	ID        ID
	UserID    string
	CarID     string
	Period    dates.Period
	TotalCost money.Money
	Status    Status
	Deleted   bool
	Meta      meta.Meta
	events.EventRecorder
}

type CreateParams struct {
	ID        ID
	UserID    string
	CarID     string
	Period    dates.Period
	TotalCost money.Money
	CreatorID string
	Now       time.Time
}

func New(params CreateParams) (*Rental, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("rental: id required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, ErrUserRequired
	}
	if strings.TrimSpace(params.CarID) == "" {
		return nil, ErrCarRequired
	}
	if err := params.Period.Validate(); err != nil {
		return nil, err
	}
	if params.TotalCost.Amount <= 0 {
		return nil, ErrCostNotPositive
	}
	r := &Rental{
		ID:        params.ID,
		UserID:    params.UserID,
		CarID:     params.CarID,
		Period:    params.Period,
		TotalCost: params.TotalCost,
		Status:    StatusPending,
		Meta:      meta.New(params.CreatorID, params.Now),
	}
	r.Record(Created{RentalID: r.ID, UserID: r.UserID, CarID: r.CarID, Start: r.Period.Start, End: r.Period.End, Total: r.TotalCost, At: r.Meta.CreatedAt})
	return r, nil
}

// ChangeStatus applies a lifecycle transition and refreshes the audit stamp.
func (r *Rental) ChangeStatus(next Status, updaterID string, now time.Time) error {
	if !CanTransition(r.Status, next) {
		return ErrInvalidTransition
	}
	prev := r.Status
	r.Status = next
	r.Meta = r.Meta.Touch(updaterID, now)
	r.Record(StatusChanged{RentalID: r.ID, CarID: r.CarID, From: prev, To: next, At: r.Meta.UpdatedAt})
	return nil
}

// SoftDelete marks the rental inactive without removing the row. Any status
// may be deleted by an authorized actor.
func (r *Rental) SoftDelete(updaterID string, now time.Time) {
	if r.Deleted {
		return
	}
	r.Deleted = true
	r.Meta = r.Meta.Touch(updaterID, now)
	r.Record(Deleted{RentalID: r.ID, CarID: r.CarID, At: r.Meta.UpdatedAt})
}

// Filter narrows rental listings. Zero values mean "any".
type Filter struct {
	CarID  string
	UserID string
	Status Status
	Period *dates.Period
	Page   int
	Limit  int
}

type Repository interface {
	// ByID returns a non-deleted rental, optionally scoped to an owner
	// (empty ownerID disables the scope). Missing, deleted or foreign
	// rentals yield ErrNotFound.
	ByID(ctx context.Context, id ID, ownerID string) (*Rental, error)
	Save(ctx context.Context, r *Rental) error
	// OverlappingForCar returns all non-deleted rentals of the car whose
	// inclusive period overlaps p, regardless of status.
	OverlappingForCar(ctx context.Context, carID string, p dates.Period) ([]*Rental, error)
	List(ctx context.Context, f Filter) ([]*Rental, error)
}
