package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bioponto/internal/config"
	"bioponto/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func TestAPINotifierPostsMessage(t *testing.T) {
	var got domain.Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewAPINotifier(srv.Client(), srv.URL)
	err := n.Notify(context.Background(), domain.Notification{Subject: "Entry", Recipient: "ana@example.org", Body: "ok"})

	require.NoError(t, err)
	assert.Equal(t, "ana@example.org", got.Recipient)
	assert.Equal(t, "Entry", got.Subject)
}

func TestAPINotifierRequiresRecipient(t *testing.T) {
	n := NewAPINotifier(http.DefaultClient, "http://127.0.0.1:1")
	assert.Error(t, n.Notify(context.Background(), domain.Notification{Subject: "x"}))
}

type fakeSender struct {
	sent  []*gomail.Message
	delay time.Duration
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	time.Sleep(f.delay)
	f.sent = append(f.sent, m...)
	return nil
}

func TestSMTPNotifierBuildsMessage(t *testing.T) {
	sender := &fakeSender{}
	n := &SMTPNotifier{sender: sender, from: "ponto@example.org"}

	err := n.Notify(context.Background(), domain.Notification{Subject: "Exit", Recipient: "ana@example.org", Body: "bye"})

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ana@example.org"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"ponto@example.org"}, sender.sent[0].GetHeader("From"))
	assert.Equal(t, []string{"Exit"}, sender.sent[0].GetHeader("Subject"))
}

func TestSMTPNotifierStopsWaitingOnTimeout(t *testing.T) {
	n := &SMTPNotifier{sender: &fakeSender{delay: 200 * time.Millisecond}, from: "ponto@example.org"}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := n.Notify(ctx, domain.Notification{Subject: "Exit", Recipient: "ana@example.org"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewSelectsDriver(t *testing.T) {
	n, err := New(config.NotifyConfig{})
	require.NoError(t, err)
	assert.IsType(t, LogNotifier{}, n)

	n, err = New(config.NotifyConfig{Driver: "api", APIURL: "http://relay"})
	require.NoError(t, err)
	assert.IsType(t, &APINotifier{}, n)

	n, err = New(config.NotifyConfig{Driver: "smtp", SMTPHost: "mail", SMTPPort: 587})
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	_, err = New(config.NotifyConfig{Driver: "pigeon"})
	assert.Error(t, err)
}
