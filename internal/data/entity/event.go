package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusClosed    EventStatus = "closed"
)

const SeatsPerRow = 10

type Event struct {
	Base
	Title       string          `db:"title"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"`
	Venue       string          `db:"venue"`
	Price       decimal.Decimal `db:"price"`
	TotalSeats  int             `db:"total_seats"`
	Status      EventStatus     `db:"status"`
	CreatedBy   *uuid.UUID      `db:"created_by"`
	Popularity  int             `db:"popularity"`
	Seats       []Seat
}

// Seat is one bookable position of an event. Position keeps list order.
type Seat struct {
	Number   string `db:"seat_number"`
	Position int    `db:"position"`
	IsBooked bool   `db:"is_booked"`
}

func (e *Event) AvailableSeats() int {
	free := 0
	for _, s := range e.Seats {
		if !s.IsBooked {
			free++
		}
	}
	return free
}

// SeatLabel names the seat at zero-based position i: A1..A10, B1..B10, ...
func SeatLabel(i int) string {
	row := i / SeatsPerRow
	letters := ""
	for {
		letters = string(rune('A'+row%26)) + letters
		row = row/26 - 1
		if row < 0 {
			break
		}
	}
	return fmt.Sprintf("%s%d", letters, i%SeatsPerRow+1)
}

// BuildSeats returns the free seats for positions [from, to).
func BuildSeats(from, to int) []Seat {
	if to <= from {
		return nil
	}
	seats := make([]Seat, 0, to-from)
	for i := from; i < to; i++ {
		seats = append(seats, Seat{Number: SeatLabel(i), Position: i})
	}
	return seats
}
