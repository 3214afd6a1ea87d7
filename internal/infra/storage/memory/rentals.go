package memory

import (
	"context"
	"sort"
	"sync"

	"autorent/internal/domain/rental"
	"autorent/internal/domain/shared/dates"
)

// RentalRepository stores rentals in memory. Used by tests and dev mode.
type RentalRepository struct {
	mu    sync.RWMutex
	items map[rental.ID]*rental.Rental
}

func NewRentalRepository() *RentalRepository {
	return &RentalRepository{items: make(map[rental.ID]*rental.Rental)}
}

func (r *RentalRepository) ByID(ctx context.Context, id rental.ID, ownerID string) (*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.Deleted {
		return nil, rental.ErrNotFound
	}
	if ownerID != "" && item.UserID != ownerID {
		return nil, rental.ErrNotFound
	}
	return cloneRental(item), nil
}

func (r *RentalRepository) Save(ctx context.Context, item *rental.Rental) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = cloneRental(item)
	return nil
}

func (r *RentalRepository) OverlappingForCar(ctx context.Context, carID string, p dates.Period) ([]*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*rental.Rental
	for _, item := range r.items {
		if item.Deleted || item.CarID != carID {
			continue
		}
		if item.Period.Overlaps(p) {
			out = append(out, cloneRental(item))
		}
	}
	return out, nil
}

func (r *RentalRepository) List(ctx context.Context, f rental.Filter) ([]*rental.Rental, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*rental.Rental, 0, len(r.items))
	for _, item := range r.items {
		if item.Deleted {
			continue
		}
		if f.CarID != "" && item.CarID != f.CarID {
			continue
		}
		if f.UserID != "" && item.UserID != f.UserID {
			continue
		}
		if f.Status != "" && item.Status != f.Status {
			continue
		}
		if f.Period != nil && !item.Period.Overlaps(*f.Period) {
			continue
		}
		matches = append(matches, cloneRental(item))
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Meta.CreatedAt.Equal(matches[j].Meta.CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].Meta.CreatedAt.After(matches[j].Meta.CreatedAt)
	})
	return paginate(matches, f.Page, f.Limit), nil
}

func cloneRental(item *rental.Rental) *rental.Rental {
	clone := *item
	clone.ClearEvents()
	return &clone
}

func paginate[T any](items []T, page, limit int) []T {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if page < 0 {
		page = 0
	}
	start := page * limit
	if start >= len(items) {
		return nil
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
