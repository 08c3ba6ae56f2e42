// Package provider builds the configured mail transport.
package provider

import (
	"fmt"
	"net/http"

	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/itmade/itmade-api/pkg/mailer"
	"github.com/itmade/itmade-api/pkg/mailer/emailjs"
	"github.com/itmade/itmade-api/pkg/mailer/mailgun"
	"github.com/itmade/itmade-api/pkg/mailer/resend"
)

// New returns the transport selected by EMAIL_TRANSPORT, instrumented and,
// when enabled, guarded by a circuit breaker.
// Missing credentials do not fail here; the transport reports Configured() == false.
func New(cfg config.EmailConfig, breaker bool) (mailer.Transport, error) {
	var (
		t   mailer.Transport
		err error
	)

	switch cfg.Transport {
	case config.TransportEmailJS:
		t = emailjs.New(emailjs.Config{
			APIURL:     cfg.EmailJS.APIURL,
			ServiceID:  cfg.EmailJS.ServiceID,
			TemplateID: cfg.EmailJS.TemplateID,
			PublicKey:  cfg.EmailJS.PublicKey,
			PrivateKey: cfg.EmailJS.PrivateKey,
		}, httpclient.NewStandardClient())
	case config.TransportResend:
		t, err = resend.New(resend.Config{
			APIKey:      cfg.Resend.APIKey,
			SenderEmail: cfg.Resend.SenderEmail,
			SenderName:  cfg.Resend.SenderName,
			Recipient:   cfg.Recipient,
		}, &http.Client{Timeout: httpclient.DefaultTimeout})
	case config.TransportMailgun:
		t = mailgun.New(mailgun.Config{
			APIKey:    cfg.Mailgun.APIKey,
			Domain:    cfg.Mailgun.Domain,
			From:      cfg.Mailgun.From,
			Recipient: cfg.Recipient,
		}, nil)
	default:
		return nil, fmt.Errorf("unknown email transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	t = mailer.Instrument(t)
	if breaker {
		t = mailer.WithBreaker(t)
	}

	return t, nil
}
