package dto

import (
	"time"

	domaincar "autorent/internal/domain/car"
)

type CarView struct {
	ID          string    `json:"id"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        int       `json:"year"`
	Type        string    `json:"type"`
	PricePerDay MoneyDTO  `json:"price_per_day"`
	State       string    `json:"state"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CarCollection struct {
	Items []CarView `json:"items"`
}

func MapCarView(c *domaincar.Car) CarView {
	if c == nil {
		return CarView{}
	}
	return CarView{
		ID:          string(c.ID),
		Brand:       c.Brand,
		Model:       c.Model,
		Year:        c.Year,
		Type:        string(c.Type),
		PricePerDay: MapMoney(c.PricePerDay),
		State:       string(c.State),
		PhotoURL:    c.PhotoURL,
		CreatedAt:   c.Meta.CreatedAt,
		UpdatedAt:   c.Meta.UpdatedAt,
	}
}

func MapCarCollection(cars []*domaincar.Car) CarCollection {
	items := make([]CarView, 0, len(cars))
	for _, c := range cars {
		items = append(items, MapCarView(c))
	}
	return CarCollection{Items: items}
}
