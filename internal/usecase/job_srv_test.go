package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/queue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJobHandler_TicketIssuedMailsQR(t *testing.T) {
	tickets := newMemTickets()
	mail := &recordingMailer{}
	h := NewJobHandler(&repository.Repository{Ticket: tickets}, &recordingNotifier{}, mail, zap.NewNop())

	ev := tickets.addEvent(entity.EventStatusPublished, "30", 10)
	ev.Date = time.Now().Add(48 * time.Hour)
	booked, err := tickets.Book(context.Background(), repository.BookingRequest{
		EventID:    ev.ID,
		UserID:     uuid.New(),
		Seats:      []string{"B3"},
		IssueToken: func(id uuid.UUID) (string, error) { return "token-" + id.String(), nil },
	})
	require.NoError(t, err)

	job, err := queue.NewJob(queue.JobTicketIssued, TicketIssuedPayload{TicketID: booked[0].ID.String()})
	require.NoError(t, err)
	require.NoError(t, h.Handle(context.Background(), job))

	require.Len(t, mail.msgs, 1)
	msg := mail.msgs[0]
	assert.Equal(t, "holder@example.com", msg.To)
	assert.Equal(t, "Your Ticket for Concert - Seat B3", msg.Subject)
	assert.Contains(t, msg.HTML, "cid:ticket-qr.png")

	require.Len(t, msg.Attachments, 1)
	assert.True(t, msg.Attachments[0].Inline)
	assert.True(t, bytes.HasPrefix(msg.Attachments[0].Content, []byte("\x89PNG")))
}

func TestJobHandler_TicketIssuedMissingTicket(t *testing.T) {
	mail := &recordingMailer{}
	h := NewJobHandler(&repository.Repository{Ticket: newMemTickets()}, &recordingNotifier{}, mail, zap.NewNop())

	job, err := queue.NewJob(queue.JobTicketIssued, TicketIssuedPayload{TicketID: uuid.NewString()})
	require.NoError(t, err)
	assert.NoError(t, h.Handle(context.Background(), job))
	assert.Empty(t, mail.msgs)

	job, err = queue.NewJob(queue.JobTicketIssued, TicketIssuedPayload{TicketID: "nope"})
	require.NoError(t, err)
	assert.Error(t, h.Handle(context.Background(), job))
}

func TestJobHandler_FanOut(t *testing.T) {
	admin, alice, bob := uuid.New(), uuid.New(), uuid.New()
	users := &stubUsers{byRole: map[entity.UserRole][]uuid.UUID{
		entity.RoleAdmin: {admin},
		entity.RoleUser:  {alice, bob},
	}}
	notes := &recordingNotifier{}
	h := NewJobHandler(&repository.Repository{User: users}, notes, &recordingMailer{}, zap.NewNop())
	ctx := context.Background()

	payload := NotifyPayload{Type: entity.NotificationBookingMade, Title: "New booking"}

	job, err := queue.NewJob(queue.JobNotifyAdmins, payload)
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, job))

	job, err = queue.NewJob(queue.JobNotifyAll, payload)
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, job))

	assert.Equal(t, []entity.UserRole{entity.RoleAdmin, ""}, users.asked)
	require.Len(t, notes.notes, 2)
	assert.Equal(t, []string{admin.String()}, notes.notes[0].UserIDs)
	assert.ElementsMatch(t, []string{admin.String(), alice.String(), bob.String()}, notes.notes[1].UserIDs)
	assert.Equal(t, "New booking", notes.notes[1].Payload.Title)
}

func TestJobHandler_UnknownType(t *testing.T) {
	notes := &recordingNotifier{}
	h := NewJobHandler(&repository.Repository{}, notes, &recordingMailer{}, zap.NewNop())
	ctx := context.Background()

	assert.Error(t, h.Handle(ctx, queue.Job{Type: "ticket.refunded", Payload: []byte(`{}`)}))
	assert.Error(t, h.Handle(ctx, queue.Job{Type: "notify.user", Payload: []byte(`{"userId":"u-1"}`)}))
	assert.Empty(t, notes.notes)
}
