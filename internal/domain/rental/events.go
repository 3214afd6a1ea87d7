package rental

import (
	"time"

	"autorent/internal/domain/shared/money"
)

type Created struct {
	RentalID ID          `json:"rental_id"`
	UserID   string      `json:"user_id"`
	CarID    string      `json:"car_id"`
	Start    time.Time   `json:"start_date"`
	End      time.Time   `json:"end_date"`
	Total    money.Money `json:"total_cost"`
	At       time.Time   `json:"at"`
}

func (e Created) EventName() string     { return "rental.created" }
func (e Created) AggregateID() string   { return string(e.RentalID) }
func (e Created) OccurredAt() time.Time { return e.At }

type StatusChanged struct {
	RentalID ID        `json:"rental_id"`
	CarID    string    `json:"car_id"`
	From     Status    `json:"from"`
	To       Status    `json:"to"`
	At       time.Time `json:"at"`
}

func (e StatusChanged) EventName() string     { return "rental.status_changed" }
func (e StatusChanged) AggregateID() string   { return string(e.RentalID) }
func (e StatusChanged) OccurredAt() time.Time { return e.At }

type Deleted struct {
	RentalID ID        `json:"rental_id"`
	CarID    string    `json:"car_id"`
	At       time.Time `json:"at"`
}

func (e Deleted) EventName() string     { return "rental.deleted" }
func (e Deleted) AggregateID() string   { return string(e.RentalID) }
func (e Deleted) OccurredAt() time.Time { return e.At }
