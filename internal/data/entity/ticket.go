package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodWallet PaymentMethod = "wallet"
)

type Ticket struct {
	BaseNoDelete
	EventID       uuid.UUID       `db:"event_id"`
	UserID        uuid.UUID       `db:"user_id"`
	SeatNumber    string          `db:"seat_number"`
	PricePaid     decimal.Decimal `db:"price_paid"`
	QRToken       string          `db:"qr_token"`
	CheckedIn     bool            `db:"checked_in"`
	CheckedInAt   *time.Time      `db:"checked_in_at"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	PaymentMethod PaymentMethod   `db:"payment_method"`
}

// TicketDetail is a ticket joined with the event and holder it references.
type TicketDetail struct {
	Ticket
	EventTitle string    `db:"event_title"`
	EventDate  time.Time `db:"event_date"`
	EventVenue string    `db:"event_venue"`
	UserName   string    `db:"user_name"`
	UserEmail  string    `db:"user_email"`
}
