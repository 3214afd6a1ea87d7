package dto

import (
	"time"

	domainreview "autorent/internal/domain/review"
)

type ReviewView struct {
	ID        string    `json:"id"`
	CarID     string    `json:"car_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReviewCollection struct {
	Items []ReviewView `json:"items"`
}

func MapReviewView(r *domainreview.Review) ReviewView {
	if r == nil {
		return ReviewView{}
	}
	return ReviewView{
		ID:        string(r.ID),
		CarID:     r.CarID,
		UserID:    r.UserID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.Meta.CreatedAt,
		UpdatedAt: r.Meta.UpdatedAt,
	}
}

func MapReviewCollection(reviews []*domainreview.Review) ReviewCollection {
	items := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		items = append(items, MapReviewView(r))
	}
	return ReviewCollection{Items: items}
}
