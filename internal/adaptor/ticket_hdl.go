package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// BookTickets handles POST /api/v1/tickets/book (protected)
func (h *TicketHandler) BookTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.BookTicketRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	booking, err := h.service.Book(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "book tickets")
		return
	}

	utils.ResponseCreated(w, "Tickets booked", booking)
}

// MyTickets handles GET /api/v1/tickets/my (protected)
func (h *TicketHandler) MyTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	tickets, err := h.service.MyTickets(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.log, err, "get my tickets")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{"items": tickets})
}

// GetTicket handles GET /api/v1/tickets/{id} (owner or admin)
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), id, userID, isAdmin(r))
	if err != nil {
		handleServiceError(w, h.log, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{"ticket": ticket})
}

// AllTickets handles GET /api/v1/tickets (admin only)
func (h *TicketHandler) AllTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.service.AllTickets(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "get all tickets")
		return
	}

	utils.ResponseSuccess(w, "success", map[string]any{"items": tickets})
}

// CheckIn handles POST /api/v1/tickets/check-in (admin only)
func (h *TicketHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req request.CheckInRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	ticket, err := h.service.CheckIn(r.Context(), req.Token)
	if err != nil {
		handleServiceError(w, h.log, err, "check in")
		return
	}

	utils.ResponseSuccess(w, "Check-in successful", map[string]any{"ticket": ticket})
}
