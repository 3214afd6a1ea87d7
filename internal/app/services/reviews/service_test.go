package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorent/internal/domain/car"
	"autorent/internal/domain/review"
	"autorent/internal/domain/shared/money"
	"autorent/internal/infra/storage/memory"
)

func newService(t *testing.T) (*Service, *memory.CarRepository) {
	t.Helper()
	carRepo := memory.NewCarRepository()
	c, err := car.New(car.CreateParams{
		ID:          "car-1",
		Brand:       "Kia",
		Model:       "Rio",
		Year:        2021,
		PricePerDay: money.Must(50000, "RUB"),
		CreatorID:   "mgr-1",
		Now:         time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, carRepo.Save(context.Background(), c))

	return &Service{Reviews: memory.NewReviewRepository(), Cars: carRepo}, carRepo
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a review", func(t *testing.T) {
		svc, _ := newService(t)
		r, err := svc.Submit(ctx, "u-1", "car-1", 5, "great car")
		require.NoError(t, err)
		assert.Equal(t, 5, r.Rating)
		assert.Equal(t, "u-1", r.UserID)
	})

	t.Run("one review per user per car", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(ctx, "u-1", "car-1", 5, "great car")
		require.NoError(t, err)

		_, err = svc.Submit(ctx, "u-1", "car-1", 3, "second thoughts")
		assert.ErrorIs(t, err, review.ErrAlreadyReviewed)

		// another user may still review
		_, err = svc.Submit(ctx, "u-2", "car-1", 4, "solid")
		assert.NoError(t, err)
	})

	t.Run("unknown car", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(ctx, "u-1", "missing", 5, "great car")
		assert.ErrorIs(t, err, car.ErrNotFound)
	})

	t.Run("rating bounds", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Submit(ctx, "u-1", "car-1", 0, "bad rating")
		assert.ErrorIs(t, err, review.ErrInvalidRating)
		_, err = svc.Submit(ctx, "u-1", "car-1", 6, "bad rating")
		assert.ErrorIs(t, err, review.ErrInvalidRating)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	r, err := svc.Submit(ctx, "u-1", "car-1", 4, "good")
	require.NoError(t, err)

	t.Run("author can edit", func(t *testing.T) {
		updated, err := svc.Update(ctx, "u-1", r.ID, 2, "broke down")
		require.NoError(t, err)
		assert.Equal(t, 2, updated.Rating)
		assert.Equal(t, "broke down", updated.Comment)
	})

	t.Run("others cannot", func(t *testing.T) {
		_, err := svc.Update(ctx, "u-2", r.ID, 5, "hijack")
		assert.ErrorIs(t, err, review.ErrNotFound)
	})
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()

	t.Run("author scope", func(t *testing.T) {
		svc, _ := newService(t)
		r, err := svc.Submit(ctx, "u-1", "car-1", 4, "good")
		require.NoError(t, err)

		err = svc.Delete(ctx, "u-2", r.ID, "u-2")
		assert.ErrorIs(t, err, review.ErrNotFound)

		require.NoError(t, svc.Delete(ctx, "u-1", r.ID, "u-1"))
		items, err := svc.List(ctx, review.Filter{CarID: "car-1"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("moderator deletes any review", func(t *testing.T) {
		svc, _ := newService(t)
		r, err := svc.Submit(ctx, "u-1", "car-1", 4, "good")
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, "mgr-1", r.ID, ""))
	})
}

func TestListReviews(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.Submit(ctx, "u-1", "car-1", 4, "good")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "u-2", "car-1", 5, "great")
	require.NoError(t, err)

	items, err := svc.List(ctx, review.Filter{CarID: "car-1"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = svc.List(ctx, review.Filter{CarID: "car-1", Rating: 5})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "u-2", items[0].UserID)
}
