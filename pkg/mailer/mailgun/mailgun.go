// Package mailgun sends contact messages through the Mailgun API.
package mailgun

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/mailer"
	mailgun "github.com/mailgun/mailgun-go/v5"
)

// Name identifies this transport
const Name = "mailgun"

// Config holds Mailgun credentials and addressing
type Config struct {
	APIKey    string
	Domain    string
	From      string
	Recipient string
}

// envelope is the provider-ready form of a message
type envelope struct {
	Domain    string
	From      string
	Recipient string
	Subject   string
	Text      string
	ReplyTo   string
	Headers   map[string]string
}

// Transport sends plain-text notifications through Mailgun
type Transport struct {
	cfg     Config
	deliver func(ctx context.Context, e envelope) error
}

// New creates a Mailgun transport. A nil mg builds a client from cfg.APIKey
// whose HTTP calls are bounded by httpclient.DefaultTimeout.
func New(cfg Config, mg mailgun.Mailgun) *Transport {
	if mg == nil {
		mg = newClient(cfg.APIKey)
	}

	return &Transport{
		cfg: cfg,
		deliver: func(ctx context.Context, e envelope) error {
			message := mailgun.NewMessage(e.Domain, e.From, e.Subject, e.Text)
			if err := message.AddRecipient(e.Recipient); err != nil {
				return fmt.Errorf("add recipient: %w", err)
			}
			message.SetReplyTo(e.ReplyTo)
			for k, v := range e.Headers {
				message.AddHeader(k, v)
			}

			_, err := mg.Send(ctx, message)
			return err
		},
	}
}

func newClient(apiKey string) *mailgun.Client {
	client := mailgun.NewMailgun(apiKey)
	client.SetHTTPClient(&http.Client{Timeout: httpclient.DefaultTimeout})
	return client
}

func (t *Transport) Name() string {
	return Name
}

func (t *Transport) Configured() bool {
	return t.cfg.APIKey != "" && t.cfg.Domain != "" && t.cfg.From != "" && t.cfg.Recipient != ""
}

func (t *Transport) Send(ctx context.Context, msg *mailer.Message) error {
	if !t.Configured() {
		return mailer.ErrNotConfigured
	}

	text, err := msg.RenderText()
	if err != nil {
		return err
	}

	e := envelope{
		Domain:    t.cfg.Domain,
		From:      t.cfg.From,
		Recipient: t.cfg.Recipient,
		Subject:   msg.SubjectLine(),
		Text:      text,
		ReplyTo:   msg.ReplyTo,
		Headers: map[string]string{
			"X-Originating-Email": msg.FromEmail,
			"X-Request-ID":        msg.RequestID,
		},
	}

	if err := t.deliver(ctx, e); err != nil {
		return classify(err)
	}

	return nil
}

// classify keeps the status of API answers so rejections stay distinct from outages
func classify(err error) error {
	var ure *mailgun.UnexpectedResponseError
	if errors.As(err, &ure) {
		return mailer.NewProviderError(Name, ure.Actual, string(ure.Data))
	}
	return mailer.Unavailable(Name, err)
}
