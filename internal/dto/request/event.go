package request

import "time"

type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	Date        time.Time `json:"date" validate:"required"`
	Venue       string    `json:"venue" validate:"required,max=200"`
	Price       *float64  `json:"price" validate:"required,gte=0"`
	TotalSeats  int       `json:"totalSeats" validate:"required,min=1,max=10000"`
	Status      string    `json:"status" validate:"omitempty,oneof=draft published closed"`
}

// UpdateEventRequest is a partial update; nil fields keep their value.
type UpdateEventRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=5000"`
	Date        *time.Time `json:"date"`
	Venue       *string    `json:"venue" validate:"omitempty,min=1,max=200"`
	Price       *float64   `json:"price" validate:"omitempty,gte=0"`
	TotalSeats  *int       `json:"totalSeats" validate:"omitempty,min=1,max=10000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=draft published closed"`
}

type ListEventsRequest struct {
	Query    string
	Status   string
	From     *time.Time
	To       *time.Time
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page     int
	Limit    int
}
