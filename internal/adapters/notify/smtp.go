package notify

import (
	"context"
	"errors"
	"log"

	"bioponto/internal/core/domain"

	"gopkg.in/gomail.v2"
)

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends plain text mail directly through an SMTP server
type SMTPNotifier struct {
	sender mailSender
	from   string
}

// NewSMTPNotifier creates an SMTP notifier
func NewSMTPNotifier(host string, port int, user, pass, from string) *SMTPNotifier {
	return &SMTPNotifier{
		sender: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

// Notify sends one message. gomail has no context support, so a cancelled ctx
// only stops the wait; the dial finishes in the background.
func (n *SMTPNotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if msg.Recipient == "" {
		return errors.New("notification without recipient")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", msg.Recipient)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	done := make(chan error, 1)
	go func() { done <- n.sender.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return err
		}
		log.Printf("📧 Mail sent to %s", msg.Recipient)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
