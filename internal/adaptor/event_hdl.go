package adaptor

import (
	"net/http"

	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/usecase"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type EventHandler struct {
	service usecase.EventService
	log     *zap.Logger
}

func NewEventHandler(service usecase.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log.With(zap.String("handler", "event")),
	}
}

// ListEvents handles GET /api/v1/events (public)
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.ListEventsRequest{
		Query:    query.Get("q"),
		Status:   query.Get("status"),
		From:     utils.ParseTime(query.Get("from")),
		To:       utils.ParseTime(query.Get("to")),
		MinPrice: utils.ParseFloat(query.Get("minPrice")),
		MaxPrice: utils.ParseFloat(query.Get("maxPrice")),
		Sort:     query.Get("sort"),
		Page:     utils.ParseInt(query.Get("page"), 1),
		Limit:    utils.ParseInt(query.Get("limit"), 10),
	}

	events, err := h.service.List(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list events")
		return
	}

	utils.ResponseSuccess(w, "success", events)
}

// GetEvent handles GET /api/v1/events/{id} (public)
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	event, err := h.service.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "get event")
		return
	}

	utils.ResponseSuccess(w, "success", event)
}

// CreateEvent handles POST /api/v1/events (admin only)
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	adminID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.service.Create(r.Context(), adminID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "create event")
		return
	}

	utils.ResponseCreated(w, "Event created", event)
}

// UpdateEvent handles PUT /api/v1/events/{id} (admin only)
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req request.UpdateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	event, err := h.service.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update event")
		return
	}

	utils.ResponseSuccess(w, "Event updated", event)
}

// DeleteEvent handles DELETE /api/v1/events/{id} (admin only)
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.log, err, "delete event")
		return
	}

	utils.ResponseSuccess(w, "Event deleted", nil)
}

// PublishEvent handles POST /api/v1/events/{id}/publish (admin only)
func (h *EventHandler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	event, err := h.service.Publish(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.log, err, "publish event")
		return
	}

	utils.ResponseSuccess(w, "Event published", event)
}
