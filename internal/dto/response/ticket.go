package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type TicketEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Date  time.Time `json:"date"`
	Venue string    `json:"venue"`
}

type TicketUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type TicketResponse struct {
	ID            string               `json:"id"`
	Event         TicketEvent          `json:"event"`
	User          *TicketUser          `json:"user,omitempty"`
	SeatNumber    string               `json:"seatNumber"`
	PricePaid     float64              `json:"pricePaid"`
	QRToken       string               `json:"qrToken,omitempty"`
	CheckedIn     bool                 `json:"checkedIn"`
	CheckedInAt   *time.Time           `json:"checkedInAt,omitempty"`
	PaymentStatus entity.PaymentStatus `json:"paymentStatus"`
	PaymentMethod entity.PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// BookedTicket is one entry of a booking confirmation.
type BookedTicket struct {
	ID         string `json:"id"`
	Event      string `json:"event"`
	SeatNumber string `json:"seatNumber"`
	QRImage    string `json:"qrImage,omitempty"`
}

type BookingResponse struct {
	Tickets   []BookedTicket `json:"tickets"`
	TotalPaid float64        `json:"totalPaid"`
}

type CheckInResponse struct {
	Ticket TicketResponse `json:"ticket"`
}

func TicketToResponse(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		ID:            t.ID.String(),
		Event:         TicketEvent{ID: t.EventID.String()},
		SeatNumber:    t.SeatNumber,
		PricePaid:     t.PricePaid.InexactFloat64(),
		QRToken:       t.QRToken,
		CheckedIn:     t.CheckedIn,
		CheckedInAt:   t.CheckedInAt,
		PaymentStatus: t.PaymentStatus,
		PaymentMethod: t.PaymentMethod,
		CreatedAt:     t.CreatedAt,
	}
}

// TicketDetailToResponse includes the holder only when withUser is set.
func TicketDetailToResponse(d *entity.TicketDetail, withUser bool) TicketResponse {
	resp := TicketToResponse(&d.Ticket)
	resp.Event = TicketEvent{
		ID:    d.EventID.String(),
		Title: d.EventTitle,
		Date:  d.EventDate,
		Venue: d.EventVenue,
	}
	if withUser {
		resp.User = &TicketUser{ID: d.UserID.String(), Name: d.UserName, Email: d.UserEmail}
	}
	return resp
}
