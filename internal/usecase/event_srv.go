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
	"event-ticketing/pkg/utils"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type EventService interface {
	List(ctx context.Context, req *request.ListEventsRequest) (*response.EventListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*response.EventDetailResponse, error)
	Create(ctx context.Context, adminID uuid.UUID, req *request.CreateEventRequest) (*response.EventResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *request.UpdateEventRequest) (*response.EventResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Publish(ctx context.Context, id uuid.UUID) (*response.EventResponse, error)
}

type eventService struct {
	eventRepo repository.EventRepository
	jobs      queue.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewEventService(eventRepo repository.EventRepository, jobs queue.Publisher, log *zap.Logger) EventService {
	return &eventService{
		eventRepo: eventRepo,
		jobs:      jobs,
		log:       log.With(zap.String("service", "event")),
		now:       time.Now,
	}
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func (s *eventService) List(ctx context.Context, req *request.ListEventsRequest) (*response.EventListResponse, error) {
	page, limit := clampPage(req.Page, req.Limit)

	events, total, err := s.eventRepo.List(ctx, repository.EventFilter{
		Query:    strings.TrimSpace(req.Query),
		Status:   req.Status,
		From:     req.From,
		To:       req.To,
		MinPrice: req.MinPrice,
		MaxPrice: req.MaxPrice,
		Sort:     req.Sort,
		Limit:    limit,
		Offset:   utils.CalculateOffset(page, limit),
	})
	if err != nil {
		return nil, err
	}

	items := make([]response.EventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, response.EventToResponse(e))
	}

	return &response.EventListResponse{Page: page, Limit: limit, Total: total, Items: items}, nil
}

func (s *eventService) Get(ctx context.Context, id uuid.UUID) (*response.EventDetailResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errors.Wrapf(domain.ErrEventNotFound, "%s", id)
	}

	return &response.EventDetailResponse{
		Event:          response.EventToResponse(event),
		AvailableSeats: event.AvailableSeats(),
	}, nil
}

func (s *eventService) Create(ctx context.Context, adminID uuid.UUID, req *request.CreateEventRequest) (*response.EventResponse, error) {
	// 1. Business rules the validator cannot express
	if !req.Date.After(s.now()) {
		return nil, domain.Validation("date must be in the future")
	}

	status := entity.EventStatusDraft
	if req.Status != "" {
		status = entity.EventStatus(req.Status)
	}

	// 2. Build event with its full seat list
	event := &entity.Event{
		Base:        entity.NewBase(s.now()),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Date:        req.Date,
		Venue:       strings.TrimSpace(req.Venue),
		Price:       decimal.NewFromFloat(*req.Price).Round(2),
		TotalSeats:  req.TotalSeats,
		Status:      status,
		CreatedBy:   &adminID,
		Seats:       entity.BuildSeats(0, req.TotalSeats),
	}

	// 3. Save
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("title", event.Title),
		zap.Int("seats", event.TotalSeats))

	// 4. Tell everyone, out of band
	s.enqueue(ctx, queue.JobNotifyAll, NotifyPayload{
		Type:     entity.NotificationEventCreated,
		Title:    "New event: " + event.Title,
		Message:  event.Title + " at " + event.Venue + " on " + event.Date.Format("Jan 2, 2006 15:04"),
		Priority: entity.PriorityMedium,
		EventID:  event.ID.String(),
	})

	resp := response.EventToResponse(event)
	return &resp, nil
}

func (s *eventService) Update(ctx context.Context, id uuid.UUID, req *request.UpdateEventRequest) (*response.EventResponse, error) {
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, errors.Wrapf(domain.ErrEventNotFound, "%s", id)
	}

	// Apply only what was sent
	if req.Title != nil {
		event.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Venue != nil {
		event.Venue = strings.TrimSpace(*req.Venue)
	}
	if req.Price != nil {
		event.Price = decimal.NewFromFloat(*req.Price).Round(2)
	}
	if req.Status != nil {
		event.Status = entity.EventStatus(*req.Status)
	}
	if req.TotalSeats != nil {
		if *req.TotalSeats < event.TotalSeats {
			return nil, errors.Wrapf(domain.ErrSeatShrink, "have %d, requested %d", event.TotalSeats, *req.TotalSeats)
		}
		event.TotalSeats = *req.TotalSeats
	}
	event.UpdatedAt = s.now()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}

	// reload so new seats come back with their labels
	updated, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.Wrapf(domain.ErrEventNotFound, "%s", id)
	}

	s.log.Info("Event updated", zap.String("event_id", id.String()))

	resp := response.EventToResponse(updated)
	return &resp, nil
}

func (s *eventService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.eventRepo.Delete(ctx, id)
}

func (s *eventService) Publish(ctx context.Context, id uuid.UUID) (*response.EventResponse, error) {
	event, err := s.eventRepo.SetStatus(ctx, id, entity.EventStatusPublished)
	if err != nil {
		return nil, err
	}

	s.log.Info("Event published", zap.String("event_id", id.String()))

	s.enqueue(ctx, queue.JobNotifyAll, NotifyPayload{
		Type:     entity.NotificationUpcomingEvent,
		Title:    event.Title + " is open for booking",
		Message:  "Seats for " + event.Title + " at " + event.Venue + " are now available.",
		Priority: entity.PriorityHigh,
		EventID:  event.ID.String(),
	})

	resp := response.EventToResponse(event)
	return &resp, nil
}

// enqueue publishes a side effect. Failures are logged, the primary write stands.
func (s *eventService) enqueue(ctx context.Context, t queue.JobType, payload any) {
	publishJob(ctx, s.jobs, t, payload, s.log)
}

func publishJob(ctx context.Context, jobs queue.Publisher, t queue.JobType, payload any, log *zap.Logger) {
	if jobs == nil {
		return
	}
	job, err := queue.NewJob(t, payload)
	if err == nil {
		err = jobs.Publish(ctx, job)
	}
	if err != nil {
		log.Warn("Failed to enqueue side effect", zap.Error(err), zap.String("type", string(t)))
	}
}
