package usecase

import (
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/queue"
	"event-ticketing/pkg/mailer"
	"event-ticketing/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth         AuthService
	User         UserService
	Event        EventService
	Ticket       TicketService
	Notification NotificationService
	Analytics    AnalyticsService
	Reminder     ReminderService
}

// Deps are the collaborators services share besides the repositories.
// Notification is built first because the job handler behind Jobs needs it too.
type Deps struct {
	Jobs         queue.Publisher
	Notification NotificationService
	Mailer       mailer.Mailer
}

func NewService(repo *repository.Repository, config *utils.Config, deps Deps, log *zap.Logger) *Service {
	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo.User, repo.Session, log),
		Event:        NewEventService(repo.Event, deps.Jobs, log),
		Ticket:       NewTicketService(repo.Ticket, config.QR, deps.Jobs, log),
		Notification: deps.Notification,
		Analytics:    NewAnalyticsService(repo.Analytics, repo.Event, log),
		Reminder:     NewReminderService(repo, deps.Notification, deps.Mailer, log),
	}
}
