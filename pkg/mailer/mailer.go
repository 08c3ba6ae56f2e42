// Package mailer defines the outbound email transport used by the contact
// pipeline and the decorators shared by every provider adapter.
package mailer

import (
	"context"
	"time"
	_ "time/tzdata" // Europe/Paris must resolve in minimal containers
)

// Transport delivers one contact message to the site owner's inbox.
// Implementations never retry; a failed Send is terminal for the submission.
type Transport interface {
	// Name identifies the provider in logs, metrics and health responses
	Name() string
	// Configured reports whether every credential the provider needs is present
	Configured() bool
	// Send delivers msg or returns an error classified with the sentinels of this package
	Send(ctx context.Context, msg *Message) error
}

// Message is the provider-neutral form of a sanitized submission.
// Name, Subject and Body are already HTML-escaped.
type Message struct {
	FromName    string
	FromEmail   string
	ReplyTo     string
	Subject     string
	Body        string
	SubmittedAt time.Time
	ClientIP    string
	RequestID   string
}

// Timestamp renders SubmittedAt in the site owner's time zone
func (m *Message) Timestamp() string {
	return m.SubmittedAt.In(parisLocation()).Format(TimestampLayout)
}

// TimestampLayout is the day-first layout used in notification emails
const TimestampLayout = "02/01/2006 15:04:05"

func parisLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}
