package response

import (
	"time"

	"event-ticketing/internal/data/entity"
)

type NotificationResponse struct {
	ID        string                      `json:"id"`
	UserID    string                      `json:"userId"`
	Type      entity.NotificationType     `json:"type"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	Data      entity.NotificationData     `json:"data"`
	IsRead    bool                        `json:"isRead"`
	Priority  entity.NotificationPriority `json:"priority"`
	CreatedAt time.Time                   `json:"createdAt"`
}

type NotificationListResponse struct {
	Notifications      []NotificationResponse `json:"notifications"`
	TotalNotifications int64                  `json:"totalNotifications"`
	UnreadCount        int64                  `json:"unreadCount"`
	CurrentPage        int                    `json:"currentPage"`
	TotalPages         int                    `json:"totalPages"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unreadCount"`
}

func NotificationToResponse(n *entity.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		Priority:  n.Priority,
		CreatedAt: n.CreatedAt,
	}
}
