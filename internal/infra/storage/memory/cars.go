package memory

import (
	"context"
	"sort"
	"sync"

	"autorent/internal/domain/car"
)

// CarRepository stores the fleet in memory.
type CarRepository struct {
	mu    sync.RWMutex
	items map[car.ID]*car.Car
}

func NewCarRepository() *CarRepository {
	return &CarRepository{items: make(map[car.ID]*car.Car)}
}

func (r *CarRepository) ByID(ctx context.Context, id car.ID) (*car.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, car.ErrNotFound
	}
	return cloneCar(item), nil
}

func (r *CarRepository) ActiveByID(ctx context.Context, id car.ID) (*car.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.Deleted {
		return nil, car.ErrNotFound
	}
	return cloneCar(item), nil
}

func (r *CarRepository) Save(ctx context.Context, item *car.Car) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.ID] = cloneCar(item)
	return nil
}

func (r *CarRepository) List(ctx context.Context, f car.Filter) ([]*car.Car, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*car.Car, 0, len(r.items))
	for _, item := range r.items {
		if item.Deleted {
			continue
		}
		if f.Type != "" && item.Type != f.Type {
			continue
		}
		if f.State != "" && item.State != f.State {
			continue
		}
		if f.MinYear > 0 && item.Year < f.MinYear {
			continue
		}
		matches = append(matches, cloneCar(item))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return paginate(matches, f.Page, f.Limit), nil
}

func cloneCar(item *car.Car) *car.Car {
	clone := *item
	return &clone
}
