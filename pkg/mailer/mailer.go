// Package mailer delivers transactional email over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"net/smtp"
	"strconv"

	"event-ticketing/pkg/utils"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"
)

type Attachment struct {
	Name    string
	Content []byte
	// Inline attachments can be referenced from HTML as cid:<Name>.
	Inline bool
}

type Message struct {
	To          string
	Subject     string
	HTML        string
	Attachments []Attachment
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer, or a mailer that only logs when no SMTP host
// is configured.
func New(cfg utils.EmailConfig, log *zap.Logger) Mailer {
	log = log.With(zap.String("component", "mailer"))
	if cfg.Host == "" {
		return &logMailer{log: log}
	}
	return &smtpMailer{cfg: cfg, log: log}
}

type smtpMailer struct {
	cfg utils.EmailConfig
	log *zap.Logger
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	envelope := mailyak.New(m.cfg.Host+":"+strconv.Itoa(m.cfg.Port), auth)
	envelope.To(msg.To)
	name, addr := splitFrom(m.cfg.From)
	envelope.From(addr)
	if name != "" {
		envelope.FromName(name)
	}
	envelope.Subject(msg.Subject)
	envelope.HTML().Set(msg.HTML)

	for _, a := range msg.Attachments {
		if a.Inline {
			envelope.AttachInline(a.Name, bytes.NewReader(a.Content))
		} else {
			envelope.Attach(a.Name, bytes.NewReader(a.Content))
		}
	}

	if err := envelope.Send(); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	m.log.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func splitFrom(from string) (name, addr string) {
	parsed, err := mail.ParseAddress(from)
	if err != nil {
		return "", from
	}
	return parsed.Name, parsed.Address
}

type logMailer struct {
	log *zap.Logger
}

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("Email (logged)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
