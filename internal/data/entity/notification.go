package entity

import "time"

type NotificationType string

const (
	NotificationEventCreated    NotificationType = "event_created"
	NotificationBookingMade     NotificationType = "booking_made"
	NotificationUpcomingEvent   NotificationType = "upcoming_event"
	NotificationEventReminder   NotificationType = "event_reminder"
	NotificationPaymentReceived NotificationType = "payment_received"
)

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityMedium NotificationPriority = "medium"
	PriorityHigh   NotificationPriority = "high"
	PriorityUrgent NotificationPriority = "urgent"
)

// Notification is stored in MongoDB, ids are uuid strings.
type Notification struct {
	ID        string               `bson:"_id"`
	UserID    string               `bson:"user_id"`
	Type      NotificationType     `bson:"type"`
	Title     string               `bson:"title"`
	Message   string               `bson:"message"`
	Data      NotificationData     `bson:"data"`
	IsRead    bool                 `bson:"is_read"`
	Priority  NotificationPriority `bson:"priority"`
	CreatedAt time.Time            `bson:"created_at"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

type NotificationData struct {
	EventID        string         `bson:"event_id,omitempty" json:"eventId,omitempty"`
	TicketID       string         `bson:"ticket_id,omitempty" json:"ticketId,omitempty"`
	AdditionalInfo map[string]any `bson:"additional_info,omitempty" json:"additionalInfo,omitempty"`
}
