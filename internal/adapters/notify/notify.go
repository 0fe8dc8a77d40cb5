// Package notify delivers punch receipts and operator alerts.
package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"bioponto/internal/config"
	"bioponto/internal/core/domain"
	"bioponto/internal/core/services"
)

// New returns the notifier selected by NOTIFY_DRIVER
func New(cfg config.NotifyConfig) (services.Notifier, error) {
	switch cfg.Driver {
	case "api":
		return NewAPINotifier(&http.Client{}, cfg.APIURL), nil
	case "smtp":
		return NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.From), nil
	case "":
		return LogNotifier{}, nil
	default:
		return nil, fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}
}

// LogNotifier only writes the message to the log
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	log.Printf("📭 Notification not sent (no driver): to=%s subject=%q", n.Recipient, n.Subject)
	return nil
}
