package cars

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"autorent/internal/domain/car"
)

// Uploader stores binary content and returns a public URL. Implemented by
// the S3 storage client.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// Service manages the fleet: CRUD, soft deletion and photo uploads. All of
// it is plain record management; the rental core only consumes the catalog
// read side.
type Service struct {
	Cars   car.Repository
	Photos Uploader
	Logger *slog.Logger
	Now    func() time.Time
}

var ErrPhotoStorageUnavailable = errors.New("cars: photo storage not configured")

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Add(ctx context.Context, creatorID string, params car.CreateParams) (*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	params.ID = car.ID(uuid.NewString())
	params.CreatorID = creatorID
	params.Now = s.now()
	c, err := car.New(params)
	if err != nil {
		return nil, err
	}
	if err := s.Cars.Save(ctx, c); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("car added", "car_id", c.ID, "brand", c.Brand, "model", c.Model)
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, updaterID string, id car.ID, params car.UpdateParams) (*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	c, err := s.Cars.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Apply(params, updaterID, s.now()); err != nil {
		return nil, err
	}
	if err := s.Cars.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, updaterID string, id car.ID) error {
	if s.Cars == nil {
		return errors.New("cars: repository required")
	}
	c, err := s.Cars.ByID(ctx, id)
	if err != nil {
		return err
	}
	c.SoftDelete(updaterID, s.now())
	return s.Cars.Save(ctx, c)
}

func (s *Service) Get(ctx context.Context, id car.ID) (*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	return s.Cars.ByID(ctx, id)
}

// CatalogGet is the client-facing lookup: soft-deleted cars are not found.
func (s *Service) CatalogGet(ctx context.Context, id car.ID) (*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	return s.Cars.ActiveByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f car.Filter) ([]*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	return s.Cars.List(ctx, f)
}

// AttachPhoto uploads the image and stores its public URL on the car.
func (s *Service) AttachPhoto(ctx context.Context, updaterID string, id car.ID, content io.Reader, contentType string) (*car.Car, error) {
	if s.Cars == nil {
		return nil, errors.New("cars: repository required")
	}
	if s.Photos == nil {
		return nil, ErrPhotoStorageUnavailable
	}
	c, err := s.Cars.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("cars/%s/%s", c.ID, uuid.NewString())
	url, err := s.Photos.Upload(ctx, key, content, contentType)
	if err != nil {
		return nil, err
	}
	c.SetPhotoURL(url, updaterID, s.now())
	if err := s.Cars.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
