package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type SeatResponse struct {
	Number   string `json:"number"`
	IsBooked bool   `json:"isBooked"`
}

type EventResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Date        time.Time          `json:"date"`
	Venue       string             `json:"venue"`
	Price       float64            `json:"price"`
	TotalSeats  int                `json:"totalSeats"`
	Seats       []SeatResponse     `json:"seats"`
	Status      entity.EventStatus `json:"status"`
	CreatedBy   *string            `json:"createdBy,omitempty"`
	Popularity  int                `json:"popularity"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

type EventDetailResponse struct {
	Event          EventResponse `json:"event"`
	AvailableSeats int           `json:"availableSeats"`
}

type EventListResponse struct {
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
	Total int64           `json:"total"`
	Items []EventResponse `json:"items"`
}

func EventToResponse(e *entity.Event) EventResponse {
	resp := EventResponse{
		ID:          e.ID.String(),
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Venue:       e.Venue,
		Price:       e.Price.InexactFloat64(),
		TotalSeats:  e.TotalSeats,
		Seats:       make([]SeatResponse, len(e.Seats)),
		Status:      e.Status,
		Popularity:  e.Popularity,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	for i, s := range e.Seats {
		resp.Seats[i] = SeatResponse{Number: s.Number, IsBooked: s.IsBooked}
	}
	if e.CreatedBy != nil {
		id := e.CreatedBy.String()
		resp.CreatedBy = &id
	}
	return resp
}
