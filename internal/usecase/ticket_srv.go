package usecase

import (
	"context"
	"strings"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/domain"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/queue"
	"event-ticketing/pkg/observability"
	"event-ticketing/pkg/qrcode"
	"event-ticketing/pkg/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type TicketService interface {
	Book(ctx context.Context, userID uuid.UUID, req *request.BookTicketRequest) (*response.BookingResponse, error)
	MyTickets(ctx context.Context, userID uuid.UUID) ([]response.TicketResponse, error)
	GetTicket(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) (*response.TicketResponse, error)
	AllTickets(ctx context.Context) ([]response.TicketResponse, error)
	CheckIn(ctx context.Context, token string) (*response.TicketResponse, error)
}

// TicketIssuedPayload is the body of a ticket.issued job.
type TicketIssuedPayload struct {
	TicketID string `json:"ticketId"`
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	qr         utils.JWTConfig
	jobs       queue.Publisher
	log        *zap.Logger
	now        func() time.Time
}

func NewTicketService(ticketRepo repository.TicketRepository, qr utils.JWTConfig, jobs queue.Publisher, log *zap.Logger) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		qr:         qr,
		jobs:       jobs,
		log:        log.With(zap.String("service", "ticket")),
		now:        time.Now,
	}
}

func (s *ticketService) Book(ctx context.Context, userID uuid.UUID, req *request.BookTicketRequest) (*response.BookingResponse, error) {
	// 1. Parse ids
	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, domain.Validation("eventId must be a valid id")
	}

	method := entity.PaymentMethodCard
	if req.PaymentMethod != "" {
		method = entity.PaymentMethod(req.PaymentMethod)
	}

	// 2. Claim seats and issue tickets in one transaction
	tickets, err := s.ticketRepo.Book(ctx, repository.BookingRequest{
		EventID:       eventID,
		UserID:        userID,
		Seats:         req.Seats,
		PaymentMethod: method,
		IssueToken: func(ticketID uuid.UUID) (string, error) {
			return utils.SignTicketToken(s.qr, ticketID, s.now())
		},
	})
	if err != nil {
		observability.BookingRejections.WithLabelValues(rejectionReason(err)).Inc()
		return nil, err
	}
	observability.TicketsBooked.Add(float64(len(tickets)))

	// 3. Build confirmation, QR images are best effort
	resp := &response.BookingResponse{Tickets: make([]response.BookedTicket, 0, len(tickets))}
	total := decimal.Zero
	for _, t := range tickets {
		total = total.Add(t.PricePaid)

		image, err := qrcode.DataURL(t.QRToken)
		if err != nil {
			s.log.Warn("Failed to render QR image", zap.Error(err), zap.String("ticket_id", t.ID.String()))
		}
		resp.Tickets = append(resp.Tickets, response.BookedTicket{
			ID:         t.ID.String(),
			Event:      t.EventID.String(),
			SeatNumber: t.SeatNumber,
			QRImage:    image,
		})
	}
	resp.TotalPaid = total.InexactFloat64()

	s.log.Info("Tickets booked",
		zap.String("event_id", eventID.String()),
		zap.String("user_id", userID.String()),
		zap.Strings("seats", req.Seats),
		zap.String("total", total.StringFixed(2)))

	// 4. Side effects after commit
	for _, t := range tickets {
		publishJob(ctx, s.jobs, queue.JobTicketIssued, TicketIssuedPayload{TicketID: t.ID.String()}, s.log)
	}
	publishJob(ctx, s.jobs, queue.JobNotifyAdmins, NotifyPayload{
		Type:     entity.NotificationBookingMade,
		Title:    "New booking",
		Message:  "Seats booked: " + strings.Join(req.Seats, ", "),
		Priority: entity.PriorityMedium,
		EventID:  eventID.String(),
		Info: map[string]any{
			"userId":    userID.String(),
			"seats":     req.Seats,
			"totalPaid": resp.TotalPaid,
		},
	}, s.log)

	return resp, nil
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotBookable):
		return "not_bookable"
	case errors.Is(err, domain.ErrUnknownSeat):
		return "unknown_seat"
	case errors.Is(err, domain.ErrSeatTaken):
		return "seat_taken"
	default:
		return "error"
	}
}

func (s *ticketService) MyTickets(ctx context.Context, userID uuid.UUID) ([]response.TicketResponse, error) {
	tickets, err := s.ticketRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return detailsToResponse(tickets, false), nil
}

func (s *ticketService) GetTicket(ctx context.Context, id, callerID uuid.UUID, isAdmin bool) (*response.TicketResponse, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, errors.Wrapf(domain.ErrTicketNotFound, "%s", id)
	}
	if !isAdmin && ticket.UserID != callerID {
		s.log.Warn("Ticket access denied",
			zap.String("ticket_id", id.String()),
			zap.String("caller_id", callerID.String()))
		return nil, domain.ErrForbidden
	}

	resp := response.TicketDetailToResponse(ticket, isAdmin)
	return &resp, nil
}

func (s *ticketService) AllTickets(ctx context.Context) ([]response.TicketResponse, error) {
	tickets, err := s.ticketRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return detailsToResponse(tickets, true), nil
}

func detailsToResponse(tickets []*entity.TicketDetail, withUser bool) []response.TicketResponse {
	out := make([]response.TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, response.TicketDetailToResponse(t, withUser))
	}
	return out
}

func (s *ticketService) CheckIn(ctx context.Context, token string) (*response.TicketResponse, error) {
	// 1. Verify signature and expiry
	ticketID, err := utils.ParseTicketToken(s.qr, token)
	if err != nil {
		observability.CheckIns.WithLabelValues("invalid_token").Inc()
		return nil, errors.Mark(errors.Wrap(err, "verify ticket token"), domain.ErrInvalidToken)
	}

	// 2. The token must belong to a stored ticket
	ticket, err := s.ticketRepo.FindByQRToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if ticket == nil || ticket.ID != ticketID {
		observability.CheckIns.WithLabelValues("not_found").Inc()
		return nil, errors.Wrapf(domain.ErrTicketNotFound, "%s", ticketID)
	}
	if ticket.CheckedIn {
		observability.CheckIns.WithLabelValues("already").Inc()
		return nil, errors.Wrapf(domain.ErrAlreadyCheckedIn, "ticket %s", ticket.ID)
	}

	// 3. Conditional flip, a concurrent scan loses here
	updated, err := s.ticketRepo.MarkCheckedIn(ctx, ticket.ID, s.now())
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyCheckedIn) {
			observability.CheckIns.WithLabelValues("already").Inc()
		}
		return nil, err
	}
	observability.CheckIns.WithLabelValues("ok").Inc()

	s.log.Info("Ticket checked in",
		zap.String("ticket_id", updated.ID.String()),
		zap.String("event_id", updated.EventID.String()))

	resp := response.TicketToResponse(updated)
	return &resp, nil
}
