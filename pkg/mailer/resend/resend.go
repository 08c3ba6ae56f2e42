// Package resend sends contact messages through the Resend API.
package resend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/itmade/itmade-api/pkg/mailer"
	resendgo "github.com/resend/resend-go/v3"
)

// Name identifies this transport
const Name = "resend"

// Config holds Resend credentials and addressing
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	Recipient   string
	// BaseURL overrides the API endpoint, mostly for tests
	BaseURL string
}

// Transport sends through the Resend SDK
type Transport struct {
	cfg    Config
	client *resendgo.Client
}

// statusKey carries the slot the status recorder writes the provider's answer code into
type statusKey struct{}

// statusRecorder keeps the HTTP status of a Resend call. The SDK turns 400
// and 422 answers into plain errors, which loses the code.
type statusRecorder struct {
	next http.RoundTripper
}

func (r *statusRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if resp != nil {
		if slot, ok := req.Context().Value(statusKey{}).(*int); ok {
			*slot = resp.StatusCode
		}
	}
	return resp, err
}

// New creates a Resend transport. httpClient bounds every API call; it is
// copied, not modified.
func New(cfg Config, httpClient *http.Client) (*Transport, error) {
	hc := http.Client{}
	if httpClient != nil {
		hc = *httpClient
	}
	next := hc.Transport
	if next == nil {
		next = http.DefaultTransport
	}
	hc.Transport = &statusRecorder{next: next}

	client := resendgo.NewCustomClient(&hc, cfg.APIKey)
	if cfg.BaseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = base
	}

	return &Transport{cfg: cfg, client: client}, nil
}

func (t *Transport) Name() string {
	return Name
}

func (t *Transport) Configured() bool {
	return t.cfg.APIKey != "" && t.cfg.SenderEmail != "" && t.cfg.Recipient != ""
}

func (t *Transport) from() string {
	if t.cfg.SenderName == "" {
		return t.cfg.SenderEmail
	}
	return fmt.Sprintf("%s <%s>", t.cfg.SenderName, t.cfg.SenderEmail)
}

func (t *Transport) Send(ctx context.Context, msg *mailer.Message) error {
	if !t.Configured() {
		return mailer.ErrNotConfigured
	}

	htmlBody, err := msg.RenderHTML()
	if err != nil {
		return err
	}
	textBody, err := msg.RenderText()
	if err != nil {
		return err
	}

	params := &resendgo.SendEmailRequest{
		From:    t.from(),
		To:      []string{t.cfg.Recipient},
		Subject: msg.SubjectLine(),
		Html:    htmlBody,
		Text:    textBody,
		ReplyTo: msg.ReplyTo,
		Headers: map[string]string{"X-Request-ID": msg.RequestID},
	}

	var status int
	ctx = context.WithValue(ctx, statusKey{}, &status)
	if _, err := t.client.Emails.SendWithContext(ctx, params); err != nil {
		return classify(status, err)
	}

	return nil
}

// classify maps an SDK error to the mailer error classes using the recorded status
func classify(status int, err error) error {
	if errors.Is(err, resendgo.ErrRateLimit) || status < 400 {
		return mailer.Unavailable(Name, err)
	}
	return mailer.NewProviderError(Name, status, err.Error())
}
