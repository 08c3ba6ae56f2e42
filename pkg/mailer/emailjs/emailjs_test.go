package emailjs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	return Config{
		APIURL:     url,
		ServiceID:  "service_itmade",
		TemplateID: "template_contact",
		PublicKey:  "pub_key",
	}
}

func testMessage() *mailer.Message {
	return &mailer.Message{
		FromName:    "Jean Dupont",
		FromEmail:   "jean@example.com",
		ReplyTo:     "jean@example.com",
		Subject:     "Projet web",
		Body:        "Bonjour, j&#39;aimerais un devis.",
		SubmittedAt: time.Date(2024, 3, 15, 13, 4, 5, 0, time.UTC),
		ClientIP:    "203.0.113.7",
		RequestID:   "req-1",
	}
}

func TestSend_PostsTemplateParams(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	tr := New(testConfig(srv.URL), httpclient.NewStandardClient())
	require.NoError(t, tr.Send(context.Background(), testMessage()))

	assert.Equal(t, "service_itmade", received["service_id"])
	assert.Equal(t, "template_contact", received["template_id"])
	assert.Equal(t, "pub_key", received["user_id"])
	assert.NotContains(t, received, "accessToken")

	params, ok := received["template_params"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Jean Dupont", params["from_name"])
	assert.Equal(t, "jean@example.com", params["from_email"])
	assert.Equal(t, "jean@example.com", params["reply_to"])
	assert.Equal(t, "Projet web", params["subject"])
	assert.Equal(t, "Bonjour, j&#39;aimerais un devis.", params["message"])
	assert.Equal(t, "15/03/2024 14:04:05", params["timestamp"])
	assert.Equal(t, "203.0.113.7", params["ip_address"])
	assert.Equal(t, "req-1", params["request_id"])
}

func TestSend_IncludesPrivateKey(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.PrivateKey = "priv_key"
	require.NoError(t, New(cfg, httpclient.NewStandardClient()).Send(context.Background(), testMessage()))

	assert.Equal(t, "priv_key", received["accessToken"])
}

func TestSend_NotConfigured(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.PublicKey = ""
	tr := New(cfg, httpclient.NewStandardClient())

	assert.False(t, tr.Configured())
	assert.ErrorIs(t, tr.Send(context.Background(), testMessage()), mailer.ErrNotConfigured)
	assert.False(t, called)
}

func TestSend_ClassifiesProviderAnswers(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{name: "bad template variables", status: http.StatusBadRequest, body: "The template ID is invalid", expected: mailer.ErrProviderRejected},
		{name: "bad key", status: http.StatusForbidden, body: "The Public Key is invalid", expected: mailer.ErrProviderRejected},
		{name: "rate limited", status: http.StatusTooManyRequests, expected: mailer.ErrProviderUnavailable},
		{name: "provider down", status: http.StatusBadGateway, expected: mailer.ErrProviderUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := New(testConfig(srv.URL), httpclient.NewStandardClient()).Send(context.Background(), testMessage())

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)

			var providerErr *mailer.ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tt.status, providerErr.StatusCode)
			assert.Equal(t, tt.body, providerErr.Body)
		})
	}
}

func TestSend_NetworkFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	err := New(testConfig(url), httpclient.NewStandardClient()).Send(context.Background(), testMessage())

	assert.ErrorIs(t, err, mailer.ErrProviderUnavailable)
}

func TestSend_HonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(testConfig(srv.URL), httpclient.NewStandardClient()).Send(ctx, testMessage())

	assert.ErrorIs(t, err, mailer.ErrProviderUnavailable)
	assert.Equal(t, "timeout", mailer.Reason(err))
}
