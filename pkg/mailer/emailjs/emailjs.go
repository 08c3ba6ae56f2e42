// Package emailjs sends contact messages through the EmailJS REST API.
package emailjs

import (
	"context"
	"net/http"

	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/mailer"
)

const (
	// Name identifies this transport
	Name = "emailjs"

	// DefaultAPIURL is the public EmailJS send endpoint
	DefaultAPIURL = "https://api.emailjs.com/api/v1.0/email/send"

	maxErrorBody = 512
)

// Config holds EmailJS credentials
type Config struct {
	APIURL     string
	ServiceID  string
	TemplateID string
	PublicKey  string
	// PrivateKey is optional; it is required only when the EmailJS account
	// enforces private-key authentication for API calls.
	PrivateKey string
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	AccessToken    string         `json:"accessToken,omitempty"`
	TemplateParams templateParams `json:"template_params"`
}

type templateParams struct {
	FromName  string `json:"from_name"`
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	ReplyTo   string `json:"reply_to"`
	Timestamp string `json:"timestamp"`
	IPAddress string `json:"ip_address"`
	RequestID string `json:"request_id"`
}

// Transport posts template parameters to EmailJS
type Transport struct {
	cfg    Config
	client httpclient.Client
}

// New creates an EmailJS transport
func New(cfg Config, client httpclient.Client) *Transport {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return &Transport{cfg: cfg, client: client}
}

func (t *Transport) Name() string {
	return Name
}

func (t *Transport) Configured() bool {
	return t.cfg.ServiceID != "" && t.cfg.TemplateID != "" && t.cfg.PublicKey != ""
}

// Send delivers msg; EmailJS answers 200 with body "OK" on success
func (t *Transport) Send(ctx context.Context, msg *mailer.Message) error {
	if !t.Configured() {
		return mailer.ErrNotConfigured
	}

	payload := sendRequest{
		ServiceID:   t.cfg.ServiceID,
		TemplateID:  t.cfg.TemplateID,
		UserID:      t.cfg.PublicKey,
		AccessToken: t.cfg.PrivateKey,
		TemplateParams: templateParams{
			FromName:  msg.FromName,
			FromEmail: msg.FromEmail,
			Subject:   msg.Subject,
			Message:   msg.Body,
			ReplyTo:   msg.ReplyTo,
			Timestamp: msg.Timestamp(),
			IPAddress: msg.ClientIP,
			RequestID: msg.RequestID,
		},
	}

	resp, err := httpclient.PostJSON(ctx, t.client, t.cfg.APIURL, payload)
	if err != nil {
		return mailer.Unavailable(Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return mailer.NewProviderError(Name, resp.StatusCode, httpclient.ReadBody(resp, maxErrorBody))
	}

	return nil
}
