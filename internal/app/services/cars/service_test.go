package cars

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autorent/internal/domain/car"
	"autorent/internal/domain/shared/money"
	"autorent/internal/infra/storage/memory"
)

type fakeUploader struct {
	lastKey         string
	lastContentType string
	err             error
}

func (f *fakeUploader) Upload(_ context.Context, key string, reader io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastKey = key
	f.lastContentType = contentType
	_, _ = io.Copy(io.Discard, reader)
	return "https://cdn.example.com/" + key, nil
}

func newService() *Service {
	return &Service{Cars: memory.NewCarRepository()}
}

func addCar(t *testing.T, svc *Service) *car.Car {
	t.Helper()
	c, err := svc.Add(context.Background(), "mgr-1", car.CreateParams{
		Brand:       "Skoda",
		Model:       "Octavia",
		Year:        2023,
		Type:        car.TypeSedan,
		PricePerDay: money.Must(80000, "RUB"),
	})
	require.NoError(t, err)
	return c
}

func TestAdd(t *testing.T) {
	svc := newService()
	c := addCar(t, svc)

	assert.NotEmpty(t, c.ID, "id is generated")
	assert.Equal(t, car.StateAvailable, c.State, "defaults to available")
	assert.Equal(t, "mgr-1", c.Meta.CreatedBy)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.Add(context.Background(), "mgr-1", car.CreateParams{Model: "Octavia", PricePerDay: money.Must(1, "RUB")})
		assert.ErrorIs(t, err, car.ErrBrandRequired)

		_, err = svc.Add(context.Background(), "mgr-1", car.CreateParams{Brand: "Skoda", Model: "Octavia"})
		assert.ErrorIs(t, err, car.ErrPriceRequired)
	})
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	c := addCar(t, svc)

	state := car.StateMaintenance
	price := money.Must(90000, "RUB")
	updated, err := svc.Update(ctx, "mgr-2", c.ID, car.UpdateParams{State: &state, PricePerDay: &price})
	require.NoError(t, err)
	assert.Equal(t, car.StateMaintenance, updated.State)
	assert.Equal(t, int64(90000), updated.PricePerDay.Amount)
	assert.Equal(t, "mgr-2", updated.Meta.UpdatedBy)

	t.Run("unknown car", func(t *testing.T) {
		_, err := svc.Update(ctx, "mgr-1", "missing", car.UpdateParams{})
		assert.ErrorIs(t, err, car.ErrNotFound)
	})
}

func TestDeleteAndCatalog(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	c := addCar(t, svc)

	require.NoError(t, svc.Delete(ctx, "mgr-1", c.ID))

	// managers still see the retired entry
	_, err := svc.Get(ctx, c.ID)
	assert.NoError(t, err)

	// the catalog does not
	_, err = svc.CatalogGet(ctx, c.ID)
	assert.ErrorIs(t, err, car.ErrNotFound)

	items, err := svc.List(ctx, car.Filter{})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAttachPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads and stores the url", func(t *testing.T) {
		uploader := &fakeUploader{}
		svc := newService()
		svc.Photos = uploader
		c := addCar(t, svc)

		updated, err := svc.AttachPhoto(ctx, "mgr-1", c.ID, strings.NewReader("jpeg-bytes"), "image/jpeg")
		require.NoError(t, err)
		assert.Contains(t, updated.PhotoURL, "cars/"+string(c.ID)+"/")
		assert.Equal(t, "image/jpeg", uploader.lastContentType)
	})

	t.Run("storage not configured", func(t *testing.T) {
		svc := newService()
		c := addCar(t, svc)

		_, err := svc.AttachPhoto(ctx, "mgr-1", c.ID, strings.NewReader("jpeg-bytes"), "image/jpeg")
		assert.ErrorIs(t, err, ErrPhotoStorageUnavailable)
	})
}
