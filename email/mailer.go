package email

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"

	"task-manager/config"
)

// Message is a plain-text email
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers a message
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer delivers mail through an SMTP relay with PLAIN auth
type SMTPMailer struct {
	config config.EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{config: cfg, send: smtp.SendMail}
}

// Send implements Mailer
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if m.config.SMTPUsername == "" || m.config.SMTPPassword == "" {
		return fmt.Errorf("email credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.config.SMTPUsername, m.config.SMTPPassword, m.config.SMTPHost)

	from := m.config.FromEmail
	if from == "" {
		from = m.config.SMTPUsername
	}

	body := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"\r\n"+
			"%s\r\n",
		m.config.FromName, from, msg.To, msg.Subject, msg.Body))

	addr := m.config.SMTPHost + ":" + m.config.SMTPPort
	if err := m.send(addr, auth, from, []string{msg.To}, body); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendGridMailer delivers mail through the SendGrid v3 API
type SendGridMailer struct {
	config config.EmailConfig
	send   func(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// NewSendGridMailer creates a SendGrid mailer
func NewSendGridMailer(cfg config.EmailConfig) *SendGridMailer {
	client := sendgrid.NewSendClient(cfg.SendGridAPIKey)
	return &SendGridMailer{config: cfg, send: client.SendWithContext}
}

// Send implements Mailer
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if m.config.FromEmail == "" {
		return fmt.Errorf("EMAIL_FROM not configured")
	}

	from := mail.NewEmail(m.config.FromName, m.config.FromEmail)
	email := mail.NewSingleEmail(from, msg.Subject, mail.NewEmail("", msg.To), msg.Body, "")

	response, err := m.send(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}
	return nil
}

// LogMailer only logs messages; used when no delivery is configured
type LogMailer struct{}

// Send implements Mailer
func (LogMailer) Send(ctx context.Context, msg Message) error {
	logger.Info("Email not delivered (no mail transport configured)", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// NewMailer picks SendGrid when an API key is set, then SMTP when its
// credentials are set, and falls back to logging
func NewMailer(cfg *config.Config) Mailer {
	switch {
	case cfg.IsSendGridConfigured():
		return NewSendGridMailer(cfg.Email)
	case cfg.IsEmailConfigured():
		return NewSMTPMailer(cfg.Email)
	}
	return LogMailer{}
}
