// Package email sends the transactional account emails.
package email

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const sendTimeout = 30 * time.Second

// Notifier sends account lifecycle emails without blocking the caller.
// Delivery failures are logged and never returned.
type Notifier struct {
	mailer Mailer
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier delivering through mailer
func NewNotifier(mailer Mailer) *Notifier {
	return &Notifier{mailer: mailer}
}

// SendWelcomeEmail greets a newly signed up user
func (n *Notifier) SendWelcomeEmail(to, name string) {
	n.dispatch(Message{
		To:      to,
		Subject: "Welcome to the automationverse",
		Body:    fmt.Sprintf("Welcome to the App, %s. Let me know how you get along with the app.", name),
	})
}

// SendCancelationEmail says goodbye to a user who deleted their account
func (n *Notifier) SendCancelationEmail(to, name string) {
	n.dispatch(Message{
		To:      to,
		Subject: fmt.Sprintf("Goodbye, %s", name),
		Body:    "I hope you had good time with automationverse!",
	})
}

// Wait blocks until every in-flight email has been handed to the mailer
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) dispatch(msg Message) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		if err := n.mailer.Send(ctx, msg); err != nil {
			logger.Error("Failed to send email", zap.String("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		logger.Debug("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	}()
}
