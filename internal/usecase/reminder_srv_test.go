package usecase

import (
	"context"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTomorrowWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)
	from, to := TomorrowWindow(now)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), to)

	// month rollover
	from, _ = TomorrowWindow(time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), from)
}

func newReminderFixture(t *testing.T) (*reminderService, *memTickets, *stubEvents, *recordingNotifier, *recordingMailer) {
	t.Helper()
	tickets := newMemTickets()
	events := &stubEvents{}
	notes := &recordingNotifier{}
	mail := &recordingMailer{}

	svc := &reminderService{
		repo:          &repository.Repository{Event: events, Ticket: tickets},
		notifications: notes,
		mail:          mail,
		log:           zap.NewNop(),
		now:           func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) },
	}
	return svc, tickets, events, notes, mail
}

func bookFor(t *testing.T, tickets *memTickets, eventID uuid.UUID, seats ...string) {
	t.Helper()
	_, err := tickets.Book(context.Background(), repository.BookingRequest{
		EventID:    eventID,
		UserID:     uuid.New(),
		Seats:      seats,
		IssueToken: func(id uuid.UUID) (string, error) { return id.String(), nil },
	})
	require.NoError(t, err)
}

func TestReminder_SendsMailAndNotification(t *testing.T) {
	svc, tickets, events, notes, mail := newReminderFixture(t)

	ev := tickets.addEvent(entity.EventStatusPublished, "20", 10)
	ev.Title, ev.Venue = "Jazz <Night>", "Blue Hall"
	ev.Date = time.Date(2026, 3, 11, 19, 0, 0, 0, time.UTC)
	events.published = []*entity.Event{ev}
	bookFor(t, tickets, ev.ID, "A1", "A2")

	sent, err := svc.SendUpcomingReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), events.from)
	assert.Equal(t, time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC), events.to)

	require.Len(t, mail.msgs, 2)
	assert.Equal(t, "holder@example.com", mail.msgs[0].To)
	assert.Contains(t, mail.msgs[0].HTML, "Jazz &lt;Night&gt;")

	require.Len(t, notes.notes, 2)
	for _, n := range notes.notes {
		assert.Equal(t, entity.NotificationEventReminder, n.Payload.Type)
		assert.Equal(t, entity.PriorityHigh, n.Payload.Priority)
		assert.Equal(t, ev.ID.String(), n.Payload.EventID)
	}
}

func TestReminder_MailFailureContinues(t *testing.T) {
	svc, tickets, events, notes, mail := newReminderFixture(t)
	mail.err = errors.New("smtp unreachable")

	ev := tickets.addEvent(entity.EventStatusPublished, "5", 4)
	events.published = []*entity.Event{ev}
	bookFor(t, tickets, ev.ID, "A1")
	bookFor(t, tickets, ev.ID, "A2")

	sent, err := svc.SendUpcomingReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	// the in-app notification still goes out for every ticket
	assert.Len(t, notes.notes, 2)
}

func TestReminder_NoEvents(t *testing.T) {
	svc, _, _, notes, mail := newReminderFixture(t)

	sent, err := svc.SendUpcomingReminders(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, notes.notes)
	assert.Empty(t, mail.msgs)
}
