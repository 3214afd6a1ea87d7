package review

import (
	"context"
	"errors"
	"strings"
	"time"

	"autorent/internal/domain/shared/meta"
)

var (
	ErrNotFound        = errors.New("review: not found")
	ErrAlreadyReviewed = errors.New("review: user already reviewed this car")
	ErrInvalidRating   = errors.New("review: rating must be between 1 and 5")
	ErrCommentRequired = errors.New("review: comment is required")
)

type ID string

type Review struct {
	ID      ID
	CarID   string
	UserID  string
	Rating  int
	Comment string
	Deleted bool
	Meta    meta.Meta
}

type CreateParams struct {
	ID        ID
	CarID     string
	UserID    string
	Rating    int
	Comment   string
	CreatorID string
	Now       time.Time
}

func New(params CreateParams) (*Review, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("review: id required")
	}
	if strings.TrimSpace(params.CarID) == "" {
		return nil, errors.New("review: car id required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, errors.New("review: user id required")
	}
	if params.Rating < 1 || params.Rating > 5 {
		return nil, ErrInvalidRating
	}
	comment := strings.TrimSpace(params.Comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}
	return &Review{
		ID:      params.ID,
		CarID:   params.CarID,
		UserID:  params.UserID,
		Rating:  params.Rating,
		Comment: comment,
		Meta:    meta.New(params.CreatorID, params.Now),
	}, nil
}

func (r *Review) Update(rating int, comment, updaterID string, now time.Time) error {
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	trimmed := strings.TrimSpace(comment)
	if trimmed == "" {
		return ErrCommentRequired
	}
	r.Rating = rating
	r.Comment = trimmed
	r.Meta = r.Meta.Touch(updaterID, now)
	return nil
}

func (r *Review) SoftDelete(updaterID string, now time.Time) {
	if r.Deleted {
		return
	}
	r.Deleted = true
	r.Meta = r.Meta.Touch(updaterID, now)
}

// Filter narrows review listings. Zero values mean "any".
type Filter struct {
	CarID  string
	UserID string
	Rating int
	Page   int
	Limit  int
}

type Repository interface {
	// ByID returns a non-deleted review, optionally scoped to its author.
	ByID(ctx context.Context, id ID, authorID string) (*Review, error)
	Save(ctx context.Context, r *Review) error
	List(ctx context.Context, f Filter) ([]*Review, error)
}
