package mailgun

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/mailer"
	mailgun "github.com/mailgun/mailgun-go/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func configured() Config {
	return Config{
		APIKey:    "key-test",
		Domain:    "mg.itmade.fr",
		From:      "Site <site@mg.itmade.fr>",
		Recipient: "contact@itmade.fr",
	}
}

func TestSend_BuildsEnvelope(t *testing.T) {
	tr := New(configured(), nil)

	var got envelope
	tr.deliver = func(_ context.Context, e envelope) error {
		got = e
		return nil
	}

	msg := &mailer.Message{
		FromName:    "Jean &amp; Marie",
		FromEmail:   "jean@example.com",
		ReplyTo:     "jean@example.com",
		Subject:     "Devis &lt;urgent&gt;",
		Body:        "Bonjour, c&#39;est pour un site.",
		SubmittedAt: time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
		ClientIP:    "198.51.100.2",
		RequestID:   "req-42",
	}

	require.NoError(t, tr.Send(context.Background(), msg))

	assert.Equal(t, "mg.itmade.fr", got.Domain)
	assert.Equal(t, "contact@itmade.fr", got.Recipient)
	assert.Equal(t, "jean@example.com", got.ReplyTo)
	assert.Equal(t, "[itmade.fr] Devis <urgent>", got.Subject)
	assert.Contains(t, got.Text, "From: Jean & Marie <jean@example.com>")
	assert.Contains(t, got.Text, "Bonjour, c'est pour un site.")
	assert.Contains(t, got.Text, "Received: 01/07/2024 10:00:00 (198.51.100.2)")
	assert.Equal(t, "req-42", got.Headers["X-Request-ID"])
}

func TestSend_NotConfigured(t *testing.T) {
	cfg := configured()
	cfg.Recipient = ""
	tr := New(cfg, nil)
	tr.deliver = func(context.Context, envelope) error {
		t.Fatal("deliver must not be called")
		return nil
	}

	assert.False(t, tr.Configured())
	assert.ErrorIs(t, tr.Send(context.Background(), &mailer.Message{}), mailer.ErrNotConfigured)
}

func TestSend_ProviderFailure(t *testing.T) {
	tr := New(configured(), nil)
	tr.deliver = func(context.Context, envelope) error {
		return errors.New("502 bad gateway")
	}

	err := tr.Send(context.Background(), &mailer.Message{RequestID: "r"})

	assert.ErrorIs(t, err, mailer.ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "502 bad gateway")
}

// apiClient returns a Mailgun client talking to an httptest server answering status
func apiClient(t *testing.T, status int, body string) *mailgun.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	mg := mailgun.NewMailgun("key-test")
	require.NoError(t, mg.SetAPIBase(srv.URL))
	return mg
}

func TestSend_ClassifiesAPIAnswers(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
		reason string
	}{
		{name: "bad key", status: http.StatusUnauthorized, want: mailer.ErrProviderRejected, reason: "rejected"},
		{name: "bad domain", status: http.StatusBadRequest, want: mailer.ErrProviderRejected, reason: "rejected"},
		{name: "throttled", status: http.StatusTooManyRequests, want: mailer.ErrProviderUnavailable, reason: "unavailable"},
		{name: "server error", status: http.StatusServiceUnavailable, want: mailer.ErrProviderUnavailable, reason: "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(configured(), apiClient(t, tt.status, `{"message":"nope"}`))

			err := tr.Send(context.Background(), &mailer.Message{RequestID: "r"})

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.reason, mailer.Reason(err))
			var pe *mailer.ProviderError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Contains(t, pe.Body, "nope")
		})
	}
}

func TestSend_RejectionsDoNotOpenBreaker(t *testing.T) {
	tr := mailer.WithBreaker(New(configured(), apiClient(t, http.StatusUnauthorized, `{"message":"Invalid private key"}`)))

	for i := 0; i < 5; i++ {
		err := tr.Send(context.Background(), &mailer.Message{RequestID: "r"})
		assert.ErrorIs(t, err, mailer.ErrProviderRejected)
		assert.NotErrorIs(t, err, mailer.ErrProviderUnavailable)
	}
	assert.Equal(t, "closed", tr.State())
}

func TestNew_DefaultClientHasTimeout(t *testing.T) {
	assert.Equal(t, httpclient.DefaultTimeout, newClient("key-test").HTTPClient().Timeout)
}
