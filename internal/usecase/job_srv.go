package usecase

import (
	"context"
	"fmt"
	"html"

	"event-ticketing/internal/data/entity"
	"event-ticketing/internal/data/repository"
	"event-ticketing/internal/queue"
	"event-ticketing/pkg/mailer"
	"event-ticketing/pkg/qrcode"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JobHandler runs the side effects services enqueue after their writes commit.
type JobHandler struct {
	repo          *repository.Repository
	notifications NotificationService
	mail          mailer.Mailer
	log           *zap.Logger
}

func NewJobHandler(repo *repository.Repository, notifications NotificationService, mail mailer.Mailer, log *zap.Logger) *JobHandler {
	return &JobHandler{
		repo:          repo,
		notifications: notifications,
		mail:          mail,
		log:           log.With(zap.String("service", "jobs")),
	}
}

var _ queue.Handler = (*JobHandler)(nil)

func (h *JobHandler) Handle(ctx context.Context, job queue.Job) error {
	switch job.Type {
	case queue.JobTicketIssued:
		var p TicketIssuedPayload
		if err := job.Decode(&p); err != nil {
			return err
		}
		return h.ticketIssued(ctx, p)

	case queue.JobNotifyAdmins, queue.JobNotifyAll:
		var p NotifyPayload
		if err := job.Decode(&p); err != nil {
			return err
		}
		role := entity.RoleAdmin
		if job.Type == queue.JobNotifyAll {
			role = ""
		}
		ids, err := h.repo.User.FindIDsByRole(ctx, role)
		if err != nil {
			return err
		}
		recipients := make([]string, len(ids))
		for i, id := range ids {
			recipients[i] = id.String()
		}
		return h.notifications.CreateForUsers(ctx, recipients, p)
	}

	return fmt.Errorf("unknown job type %q", job.Type)
}

// ticketIssued mails the holder their ticket with the QR code inline.
func (h *JobHandler) ticketIssued(ctx context.Context, p TicketIssuedPayload) error {
	id, err := uuid.Parse(p.TicketID)
	if err != nil {
		return fmt.Errorf("ticket id %q: %w", p.TicketID, err)
	}

	tk, err := h.repo.Ticket.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if tk == nil {
		h.log.Warn("Issued ticket vanished before mailing", zap.String("ticket_id", p.TicketID))
		return nil
	}

	png, err := qrcode.PNG(tk.QRToken)
	if err != nil {
		return fmt.Errorf("render qr for %s: %w", id, err)
	}

	const qrName = "ticket-qr.png"
	err = h.mail.Send(ctx, mailer.Message{
		To:      tk.UserEmail,
		Subject: fmt.Sprintf("Your Ticket for %s - Seat %s", tk.EventTitle, tk.SeatNumber),
		HTML: fmt.Sprintf(`<p>Thanks for your booking!</p>
<p>Event: <b>%s</b> at <b>%s</b> on <b>%s</b></p>
<p>Seat: <b>%s</b></p>
<p><img src="cid:%s" alt="QR" /></p>`,
			html.EscapeString(tk.EventTitle),
			html.EscapeString(tk.EventVenue),
			tk.EventDate.Format("Mon Jan 2, 2006 15:04"),
			html.EscapeString(tk.SeatNumber),
			qrName,
		),
		Attachments: []mailer.Attachment{{Name: qrName, Content: png, Inline: true}},
	})
	if err != nil {
		return fmt.Errorf("mail ticket %s: %w", id, err)
	}

	h.log.Info("Ticket mailed", zap.String("ticket_id", p.TicketID), zap.String("to", tk.UserEmail))
	return nil
}
