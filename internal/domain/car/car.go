package car

import (
	"context"
	"errors"
	"strings"
	"time"

	"autorent/internal/domain/shared/meta"
	"autorent/internal/domain/shared/money"
)

var (
	ErrNotFound        = errors.New("car: not found")
	ErrInvalidType     = errors.New("car: unknown type")
	ErrInvalidCarState = errors.New("car: unknown status")
	ErrBrandRequired   = errors.New("car: brand is required")
	ErrModelRequired   = errors.New("car: model is required")
	ErrPriceRequired   = errors.New("car: price per day must be positive")
)

type ID string

type Type string

const (
	TypeSedan       Type = "sedan"
	TypeSUV         Type = "suv"
	TypeHatchback   Type = "hatchback"
	TypeCoupe       Type = "coupe"
	TypeConvertible Type = "convertible"
	TypeOther       Type = "other"
)

// State is the fleet status of the car. It is maintained manually by
// managers and never synchronized by the rental lifecycle.
type State string

const (
	StateAvailable   State = "available"
	StateRented      State = "rented"
	StateMaintenance State = "maintenance"
)

func ParseType(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeSedan:
		return TypeSedan, nil
	case TypeSUV:
		return TypeSUV, nil
	case TypeHatchback:
		return TypeHatchback, nil
	case TypeCoupe:
		return TypeCoupe, nil
	case TypeConvertible:
		return TypeConvertible, nil
	case TypeOther:
		return TypeOther, nil
	default:
		return "", ErrInvalidType
	}
}

func ParseState(raw string) (State, error) {
	switch State(strings.ToLower(strings.TrimSpace(raw))) {
	case StateAvailable:
		return StateAvailable, nil
	case StateRented:
		return StateRented, nil
	case StateMaintenance:
		return StateMaintenance, nil
	default:
		return "", ErrInvalidCarState
	}
}

type Car struct {
	ID          ID
	Brand       string
	Model       string
	Year        int
	Type        Type
	PricePerDay money.Money
	State       State
	PhotoURL    string
	Deleted     bool
	Meta        meta.Meta
}

type CreateParams struct {
	ID          ID
	Brand       string
	Model       string
	Year        int
	Type        Type
	PricePerDay money.Money
	State       State
	CreatorID   string
	Now         time.Time
}

func New(params CreateParams) (*Car, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("car: id required")
	}
	brand := strings.TrimSpace(params.Brand)
	if brand == "" {
		return nil, ErrBrandRequired
	}
	model := strings.TrimSpace(params.Model)
	if model == "" {
		return nil, ErrModelRequired
	}
	if params.PricePerDay.Amount <= 0 {
		return nil, ErrPriceRequired
	}
	state := params.State
	if state == "" {
		state = StateAvailable
	}
	typ := params.Type
	if typ == "" {
		typ = TypeOther
	}
	return &Car{
		ID:          params.ID,
		Brand:       brand,
		Model:       model,
		Year:        params.Year,
		Type:        typ,
		PricePerDay: params.PricePerDay,
		State:       state,
		Meta:        meta.New(params.CreatorID, params.Now),
	}, nil
}

type UpdateParams struct {
	Brand       *string
	Model       *string
	Year        *int
	Type        *Type
	PricePerDay *money.Money
	State       *State
}

// Apply patches the provided fields and refreshes the audit stamp.
func (c *Car) Apply(params UpdateParams, updaterID string, now time.Time) error {
	if params.Brand != nil {
		brand := strings.TrimSpace(*params.Brand)
		if brand == "" {
			return ErrBrandRequired
		}
		c.Brand = brand
	}
	if params.Model != nil {
		model := strings.TrimSpace(*params.Model)
		if model == "" {
			return ErrModelRequired
		}
		c.Model = model
	}
	if params.Year != nil {
		c.Year = *params.Year
	}
	if params.Type != nil {
		c.Type = *params.Type
	}
	if params.PricePerDay != nil {
		if params.PricePerDay.Amount <= 0 {
			return ErrPriceRequired
		}
		c.PricePerDay = *params.PricePerDay
	}
	if params.State != nil {
		c.State = *params.State
	}
	c.Meta = c.Meta.Touch(updaterID, now)
	return nil
}

func (c *Car) SetPhotoURL(url, updaterID string, now time.Time) {
	c.PhotoURL = strings.TrimSpace(url)
	c.Meta = c.Meta.Touch(updaterID, now)
}

func (c *Car) SoftDelete(updaterID string, now time.Time) {
	if c.Deleted {
		return
	}
	c.Deleted = true
	c.Meta = c.Meta.Touch(updaterID, now)
}

// Filter narrows fleet listings. Zero values mean "any".
type Filter struct {
	Type    Type
	State   State
	MinYear int
	Page    int
	Limit   int
}

type Repository interface {
	// ByID returns a car regardless of deletion so managers can inspect
	// retired fleet entries.
	ByID(ctx context.Context, id ID) (*Car, error)
	// ActiveByID is the catalog contract used by the pricing path: it
	// yields ErrNotFound for missing or soft-deleted cars.
	ActiveByID(ctx context.Context, id ID) (*Car, error)
	Save(ctx context.Context, c *Car) error
	List(ctx context.Context, f Filter) ([]*Car, error)
}
