package email

import (
	"context"
	"errors"
	"net/smtp"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"

	"task-manager/config"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{CallerKey: "file", TimeKey: "timestamp", CallerSkip: 1})
	os.Exit(m.Run())
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingMailer) Send(ctx context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func TestNotifier_SendsLifecycleEmails(t *testing.T) {
	mailer := &recordingMailer{}
	n := NewNotifier(mailer)

	n.SendWelcomeEmail("mike@example.com", "Mike")
	n.SendCancelationEmail("mike@example.com", "Mike")
	n.Wait()

	require.Len(t, mailer.sent, 2)
	subjects := []string{mailer.sent[0].Subject, mailer.sent[1].Subject}
	assert.ElementsMatch(t, []string{"Welcome to the automationverse", "Goodbye, Mike"}, subjects)
	bodies := map[string]string{}
	for _, msg := range mailer.sent {
		assert.Equal(t, "mike@example.com", msg.To)
		bodies[msg.Subject] = msg.Body
	}
	assert.Equal(t, "Welcome to the App, Mike. Let me know how you get along with the app.", bodies["Welcome to the automationverse"])
	assert.Equal(t, "I hope you had good time with automationverse!", bodies["Goodbye, Mike"])
}

func TestNotifier_SwallowsDeliveryErrors(t *testing.T) {
	mailer := &recordingMailer{err: errors.New("smtp down")}
	n := NewNotifier(mailer)

	assert.NotPanics(t, func() {
		n.SendWelcomeEmail("mike@example.com", "Mike")
		n.Wait()
	})
	assert.Len(t, mailer.sent, 1)
}

func TestSMTPMailer_Send(t *testing.T) {
	cfg := config.EmailConfig{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUsername: "bot@example.com",
		SMTPPassword: "secret",
		FromEmail:    "noreply@example.com",
		FromName:     "Task Manager",
	}
	m := NewSMTPMailer(cfg)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody string
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), Message{To: "mike@example.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "noreply@example.com", gotFrom)
	assert.Equal(t, []string{"mike@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotBody, "From: Task Manager <noreply@example.com>\r\n"))
	assert.Contains(t, gotBody, "Subject: Hi\r\n")
}

func TestSMTPMailer_RequiresCredentials(t *testing.T) {
	m := NewSMTPMailer(config.EmailConfig{})
	assert.Error(t, m.Send(context.Background(), Message{To: "mike@example.com"}))
}

func TestSendGridMailer_Send(t *testing.T) {
	m := NewSendGridMailer(config.EmailConfig{
		SendGridAPIKey: "SG.key",
		FromEmail:      "noreply@example.com",
		FromName:       "Task Manager",
	})

	var got *mail.SGMailV3
	m.send = func(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
		got = email
		return &rest.Response{StatusCode: 202}, nil
	}

	err := m.Send(context.Background(), Message{To: "mike@example.com", Subject: "Hi", Body: "Hello"})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "Hi", got.Subject)
	assert.Equal(t, "noreply@example.com", got.From.Address)
	assert.Equal(t, "Task Manager", got.From.Name)
	require.Len(t, got.Personalizations, 1)
	require.Len(t, got.Personalizations[0].To, 1)
	assert.Equal(t, "mike@example.com", got.Personalizations[0].To[0].Address)
}

func TestSendGridMailer_Errors(t *testing.T) {
	cfg := config.EmailConfig{SendGridAPIKey: "SG.key", FromEmail: "noreply@example.com"}

	t.Run("error status", func(t *testing.T) {
		m := NewSendGridMailer(cfg)
		m.send = func(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
			return &rest.Response{StatusCode: 401}, nil
		}
		assert.Error(t, m.Send(context.Background(), Message{To: "mike@example.com"}))
	})

	t.Run("transport error", func(t *testing.T) {
		m := NewSendGridMailer(cfg)
		m.send = func(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
			return nil, errors.New("connection refused")
		}
		assert.Error(t, m.Send(context.Background(), Message{To: "mike@example.com"}))
	})

	t.Run("missing sender", func(t *testing.T) {
		m := NewSendGridMailer(config.EmailConfig{SendGridAPIKey: "SG.key"})
		assert.Error(t, m.Send(context.Background(), Message{To: "mike@example.com"}))
	})
}

func TestNewMailer(t *testing.T) {
	smtpCreds := config.EmailConfig{SMTPUsername: "u", SMTPPassword: "p", FromEmail: "f@example.com"}

	tests := []struct {
		name  string
		email config.EmailConfig
		want  Mailer
	}{
		{"nothing configured", config.EmailConfig{}, LogMailer{}},
		{"smtp credentials", smtpCreds, &SMTPMailer{}},
		{"sendgrid key", config.EmailConfig{SendGridAPIKey: "SG.key", FromEmail: "f@example.com"}, &SendGridMailer{}},
		{"sendgrid wins over smtp", config.EmailConfig{
			SendGridAPIKey: "SG.key",
			SMTPUsername:   "u",
			SMTPPassword:   "p",
			FromEmail:      "f@example.com",
		}, &SendGridMailer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.IsType(t, tt.want, NewMailer(&config.Config{Email: tt.email}))
		})
	}
}
