package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"autorent/internal/domain/car"
	"autorent/internal/domain/review"
)

// Service manages car reviews. One review per author per car.
type Service struct {
	Reviews review.Repository
	Cars    car.Repository
	Now     func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Submit(ctx context.Context, authorID, carID string, rating int, comment string) (*review.Review, error) {
	if s.Reviews == nil || s.Cars == nil {
		return nil, errors.New("reviews: repositories required")
	}
	if _, err := s.Cars.ActiveByID(ctx, car.ID(carID)); err != nil {
		return nil, err
	}
	existing, err := s.Reviews.List(ctx, review.Filter{CarID: carID, UserID: authorID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, review.ErrAlreadyReviewed
	}
	r, err := review.New(review.CreateParams{
		ID:        review.ID(uuid.NewString()),
		CarID:     carID,
		UserID:    authorID,
		Rating:    rating,
		Comment:   comment,
		CreatorID: authorID,
		Now:       s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Reviews.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update edits the author's own review.
func (s *Service) Update(ctx context.Context, authorID string, id review.ID, rating int, comment string) (*review.Review, error) {
	if s.Reviews == nil {
		return nil, errors.New("reviews: repository required")
	}
	r, err := s.Reviews.ByID(ctx, id, authorID)
	if err != nil {
		return nil, err
	}
	if err := r.Update(rating, comment, authorID, s.now()); err != nil {
		return nil, err
	}
	if err := s.Reviews.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete soft-deletes a review; restrictToUserID scopes the lookup so
// clients can only remove their own.
func (s *Service) Delete(ctx context.Context, updaterID string, id review.ID, restrictToUserID string) error {
	if s.Reviews == nil {
		return errors.New("reviews: repository required")
	}
	r, err := s.Reviews.ByID(ctx, id, restrictToUserID)
	if err != nil {
		return err
	}
	r.SoftDelete(updaterID, s.now())
	return s.Reviews.Save(ctx, r)
}

func (s *Service) List(ctx context.Context, f review.Filter) ([]*review.Review, error) {
	if s.Reviews == nil {
		return nil, errors.New("reviews: repository required")
	}
	return s.Reviews.List(ctx, f)
}
