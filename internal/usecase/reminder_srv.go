package usecase

import (
	"context"
	"fmt"
	"html"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/pkg/mailer"

	"go.uber.org/zap"
)

type ReminderService interface {
	// SendUpcomingReminders mails and notifies every holder of a ticket for
	// a published event taking place tomorrow. It returns the number of
	// tickets reminded.
	SendUpcomingReminders(ctx context.Context) (int, error)
	// CleanSessions drops expired session rows.
	CleanSessions(ctx context.Context) (int64, error)
}

type reminderService struct {
	repo          *repository.Repository
	notifications NotificationService
	mail          mailer.Mailer
	log           *zap.Logger
	now           func() time.Time
}

func NewReminderService(repo *repository.Repository, notifications NotificationService, mail mailer.Mailer, log *zap.Logger) ReminderService {
	return &reminderService{
		repo:          repo,
		notifications: notifications,
		mail:          mail,
		log:           log.With(zap.String("service", "reminder")),
		now:           time.Now,
	}
}

// TomorrowWindow is [tomorrow 00:00, day after 00:00) in now's location.
func TomorrowWindow(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	from := time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
	return from, from.AddDate(0, 0, 1)
}

func (s *reminderService) SendUpcomingReminders(ctx context.Context) (int, error) {
	from, to := TomorrowWindow(s.now())

	events, err := s.repo.Event.FindPublishedBetween(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, ev := range events {
		tickets, err := s.repo.Ticket.FindByEvent(ctx, ev.ID)
		if err != nil {
			s.log.Error("Failed to load tickets for reminder", zap.Error(err), zap.String("event_id", ev.ID.String()))
			continue
		}

		for _, tk := range tickets {
			if s.remind(ctx, ev, tk) {
				sent++
			}
		}
	}

	s.log.Info("Reminders sent",
		zap.Int("events", len(events)),
		zap.Int("tickets", sent),
		zap.Time("window_start", from))
	return sent, nil
}

// remind delivers one reminder. Each failure is logged and skipped.
func (s *reminderService) remind(ctx context.Context, ev *entity.Event, tk *entity.TicketDetail) bool {
	ok := true

	if tk.UserEmail != "" {
		err := s.mail.Send(ctx, mailer.Message{
			To:      tk.UserEmail,
			Subject: fmt.Sprintf("Reminder: %s is tomorrow", ev.Title),
			HTML:    reminderHTML(ev, tk),
		})
		if err != nil {
			s.log.Warn("Failed to send reminder email",
				zap.Error(err),
				zap.String("ticket_id", tk.ID.String()))
			ok = false
		}
	}

	_, err := s.notifications.Create(ctx, tk.UserID.String(), NotifyPayload{
		Type:     entity.NotificationEventReminder,
		Title:    ev.Title + " is tomorrow",
		Message:  fmt.Sprintf("%s at %s, seat %s.", ev.Title, ev.Venue, tk.SeatNumber),
		Priority: entity.PriorityHigh,
		EventID:  ev.ID.String(),
		TicketID: tk.ID.String(),
	})
	if err != nil {
		s.log.Warn("Failed to create reminder notification",
			zap.Error(err),
			zap.String("ticket_id", tk.ID.String()))
		ok = false
	}

	return ok
}

func reminderHTML(ev *entity.Event, tk *entity.TicketDetail) string {
	name := tk.UserName
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf(`<p>Hi %s,</p>
<p>This is a reminder for <b>%s</b> at <b>%s</b> on <b>%s</b>.</p>
<p>Seat: %s</p>
<p>See you there!</p>`,
		html.EscapeString(name),
		html.EscapeString(ev.Title),
		html.EscapeString(ev.Venue),
		ev.Date.Format("Mon Jan 2, 2006 15:04"),
		html.EscapeString(tk.SeatNumber),
	)
}

func (s *reminderService) CleanSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.Session.CleanExpiredSessions(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Expired sessions removed", zap.Int64("count", n))
	}
	return n, nil
}
