package repository

import (
	"event-ticketing/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Event        EventRepository
	Ticket       TicketRepository
	Analytics    AnalyticsRepository
	Notification NotificationRepository
}

// NewRepository wires the relational repositories to db and notifications to mdb.
func NewRepository(db database.PgxIface, mdb *mongo.Database, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Event:        NewEventRepository(db, log),
		Ticket:       NewTicketRepository(db, log),
		Analytics:    NewAnalyticsRepository(db, log),
		Notification: NewNotificationRepository(mdb, log),
	}
}
