package notify

import (
	"context"
	"errors"
	"log"
	"net/http"

	"bioponto/internal/core/domain"
	"bioponto/internal/pkg/httpx"
)

// APINotifier posts {subject, recipient, body} to an e-mail relay
type APINotifier struct {
	client *http.Client
	url    string
	retry  httpx.RetryConfig
}

// NewAPINotifier creates a relay notifier
func NewAPINotifier(client *http.Client, url string) *APINotifier {
	return &APINotifier{
		client: client,
		url:    url,
		retry:  httpx.RetryConfig{MaxAttempts: 2},
	}
}

// Notify sends one message; the caller bounds it with ctx
func (n *APINotifier) Notify(ctx context.Context, msg domain.Notification) error {
	if msg.Recipient == "" {
		return errors.New("notification without recipient")
	}
	if _, err := httpx.PostJSON(ctx, n.client, n.url, msg, n.retry); err != nil {
		return err
	}
	log.Printf("📧 Notification relayed to %s", msg.Recipient)
	return nil
}
