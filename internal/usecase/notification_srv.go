package usecase

import (
	"context"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/dto/request"
	"event-ticketing/internal/dto/response"
	"event-ticketing/internal/realtime"
	"event-ticketing/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifyPayload describes a notification independent of its recipients.
// It is also the body of the notify.* jobs.
type NotifyPayload struct {
	UserID   string                      `json:"userId,omitempty"`
	Type     entity.NotificationType     `json:"type"`
	Title    string                      `json:"title"`
	Message  string                      `json:"message"`
	Priority entity.NotificationPriority `json:"priority,omitempty"`
	EventID  string                      `json:"eventId,omitempty"`
	TicketID string                      `json:"ticketId,omitempty"`
	Info     map[string]any              `json:"info,omitempty"`
}

type NotificationService interface {
	Create(ctx context.Context, userID string, in NotifyPayload) (*response.NotificationResponse, error)
	CreateForUsers(ctx context.Context, userIDs []string, in NotifyPayload) error
	List(ctx context.Context, userID string, req *request.ListNotificationsRequest) (*response.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (*response.UnreadCountResponse, error)
	SendTest(ctx context.Context, userID string) (*response.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID string) (*response.NotificationResponse, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  realtime.Emitter
	log  *zap.Logger
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, hub realtime.Emitter, log *zap.Logger) NotificationService {
	return &notificationService{
		repo: repo,
		hub:  hub,
		log:  log.With(zap.String("service", "notification")),
		now:  time.Now,
	}
}

func (s *notificationService) build(userID string, in NotifyPayload) *entity.Notification {
	now := s.now()
	priority := in.Priority
	if priority == "" {
		priority = entity.PriorityMedium
	}
	return &entity.Notification{
		ID:      uuid.NewString(),
		UserID:  userID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		Data: entity.NotificationData{
			EventID:        in.EventID,
			TicketID:       in.TicketID,
			AdditionalInfo: in.Info,
		},
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// emit pushes to the user's room. Nobody listening is fine.
func (s *notificationService) emit(ctx context.Context, userID, event string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Emit(ctx, realtime.UserRoom(userID), event, payload)
}

func (s *notificationService) Create(ctx context.Context, userID string, in NotifyPayload) (*response.NotificationResponse, error) {
	n := s.build(userID, in)
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	resp := response.NotificationToResponse(n)
	s.emit(ctx, userID, realtime.EventNewNotification, resp)
	return &resp, nil
}

func (s *notificationService) CreateForUsers(ctx context.Context, userIDs []string, in NotifyPayload) error {
	if len(userIDs) == 0 {
		return nil
	}

	ns := make([]*entity.Notification, len(userIDs))
	for i, id := range userIDs {
		ns[i] = s.build(id, in)
	}
	if err := s.repo.CreateMany(ctx, ns); err != nil {
		return err
	}

	for _, n := range ns {
		s.emit(ctx, n.UserID, realtime.EventNewNotification, response.NotificationToResponse(n))
	}

	s.log.Info("Notifications fanned out",
		zap.String("type", string(in.Type)),
		zap.Int("recipients", len(ns)))
	return nil
}

func (s *notificationService) List(ctx context.Context, userID string, req *request.ListNotificationsRequest) (*response.NotificationListResponse, error) {
	page, limit := clampPage(req.Page, req.Limit)
	if req.Limit < 1 {
		limit = 20
	}

	items, err := s.repo.FindByUser(ctx, userID, req.UnreadOnly, limit, utils.CalculateOffset(page, limit))
	if err != nil {
		return nil, err
	}
	total, err := s.repo.CountByUser(ctx, userID, req.UnreadOnly)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.CountByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	out := make([]response.NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, response.NotificationToResponse(n))
	}

	return &response.NotificationListResponse{
		Notifications:      out,
		TotalNotifications: total,
		UnreadCount:        unread,
		CurrentPage:        page,
		TotalPages:         utils.CalculateTotalPages(total, limit),
	}, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (*response.UnreadCountResponse, error) {
	n, err := s.repo.CountByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	return &response.UnreadCountResponse{UnreadCount: n}, nil
}

func (s *notificationService) SendTest(ctx context.Context, userID string) (*response.NotificationResponse, error) {
	return s.Create(ctx, userID, NotifyPayload{
		Type:     entity.NotificationEventReminder,
		Title:    "Test notification",
		Message:  "This is a test notification to check the real-time channel.",
		Priority: entity.PriorityMedium,
		Info:     map[string]any{"test": true},
	})
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) (*response.NotificationResponse, error) {
	n, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	resp := response.NotificationToResponse(n)
	s.emit(ctx, userID, realtime.EventNotificationRead, map[string]string{"notificationId": id})
	return &resp, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.emit(ctx, userID, realtime.EventAllNotificationsRead, map[string]int64{"modified": n})
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.emit(ctx, userID, realtime.EventNotificationDeleted, map[string]string{"notificationId": id})
	return nil
}
