package memory

import (
	"context"
	"sort"
	"sync"

	"autorent/internal/domain/review"
)

// ReviewRepository stores reviews in memory.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[review.ID]*review.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[review.ID]*review.Review)}
}

func (r *ReviewRepository) ByID(ctx context.Context, id review.ID, authorID string) (*review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.Deleted {
		return nil, review.ErrNotFound
	}
	if authorID != "" && item.UserID != authorID {
		return nil, review.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *ReviewRepository) Save(ctx context.Context, item *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *ReviewRepository) List(ctx context.Context, f review.Filter) ([]*review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*review.Review, 0, len(r.items))
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
		if f.Rating > 0 && item.Rating != f.Rating {
			continue
		}
		clone := *item
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Meta.CreatedAt.Equal(matches[j].Meta.CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].Meta.CreatedAt.After(matches[j].Meta.CreatedAt)
	})
	return paginate(matches, f.Page, f.Limit), nil
}
