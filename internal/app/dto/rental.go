package dto

import (
	"time"

	domainrental "autorent/internal/domain/rental"
)

type RentalView struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CarID     string    `json:"car_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      int       `json:"days"`
	TotalCost MoneyDTO  `json:"total_cost"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RentalCollection struct {
	Items []RentalView `json:"items"`
}

type QuoteView struct {
	Days      int      `json:"days"`
	FullCost  MoneyDTO `json:"full_cost"`
	Discount  MoneyDTO `json:"discount"`
	TotalCost MoneyDTO `json:"total_cost"`
	Message   string   `json:"message"`
}

// ScheduleEntry is the redacted busy-period view clients see: the booking
// window and its status, never the renter or the price.
type ScheduleEntry struct {
	ID        string `json:"id"`
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
}

type ScheduleView struct {
	CarID string          `json:"car_id"`
	Items []ScheduleEntry `json:"items"`
}

type AvailabilityView struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Available bool   `json:"available"`
}

const dateLayout = "2006-01-02"

func MapRentalView(r *domainrental.Rental) RentalView {
	if r == nil {
		return RentalView{}
	}
	return RentalView{
		ID:        string(r.ID),
		UserID:    r.UserID,
		CarID:     r.CarID,
		StartDate: r.Period.Start.Format(dateLayout),
		EndDate:   r.Period.End.Format(dateLayout),
		Days:      r.Period.Days(),
		TotalCost: MapMoney(r.TotalCost),
		Status:    string(r.Status),
		CreatedAt: r.Meta.CreatedAt,
		UpdatedAt: r.Meta.UpdatedAt,
	}
}

func MapRentalCollection(rentals []*domainrental.Rental) RentalCollection {
	items := make([]RentalView, 0, len(rentals))
	for _, r := range rentals {
		items = append(items, MapRentalView(r))
	}
	return RentalCollection{Items: items}
}

func MapScheduleView(carID string, rentals []*domainrental.Rental) ScheduleView {
	items := make([]ScheduleEntry, 0, len(rentals))
	for _, r := range rentals {
		items = append(items, ScheduleEntry{
			ID:        string(r.ID),
			CarID:     r.CarID,
			StartDate: r.Period.Start.Format(dateLayout),
			EndDate:   r.Period.End.Format(dateLayout),
			Status:    string(r.Status),
		})
	}
	return ScheduleView{CarID: carID, Items: items}
}

func MapQuoteView(q domainrental.Quote) QuoteView {
	return QuoteView{
		Days:      q.Days,
		FullCost:  MapMoney(q.FullCost),
		Discount:  MapMoney(q.Discount),
		TotalCost: MapMoney(q.TotalCost),
		Message:   q.Message,
	}
}
