// Package contactform drives the contact form from the client side: local
// validation with touched-field tracking, a single in-flight submission, and
// mapping of the endpoint's answer to a status the UI can render.
package contactform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/itmade/itmade-api/internal/contact"
	"github.com/itmade/itmade-api/internal/models"
	"github.com/itmade/itmade-api/pkg/httpclient"
)

// SendPath is the contact endpoint relative to the site root
const SendPath = "/api/contact/send-email"

// Status texts shown to the visitor
const (
	MsgFixErrors   = "Please fix the errors in the form."
	MsgSent        = "Your message has been sent successfully! We will get back to you shortly."
	MsgSlowDown    = "Too many attempts. Please wait a few minutes before trying again."
	MsgFailureBase = "An error occurred while sending your message. Please try again later or write to us directly at"
	MsgInFlight    = "Your message is already being sent."
)

// Fields of the form, in display order
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldSubject = "subject"
	FieldMessage = "message"
)

var fields = []string{FieldName, FieldEmail, FieldSubject, FieldMessage}

// Kind classifies a Status
type Kind string

const (
	StatusIdle    Kind = "idle"
	StatusInvalid Kind = "invalid"
	StatusBusy    Kind = "busy"
	StatusSuccess Kind = "success"
	StatusError   Kind = "error"
)

// Form holds the visitor's input
type Form struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func (f Form) request() *models.ContactRequest {
	return &models.ContactRequest{Name: f.Name, Email: f.Email, Subject: f.Subject, Message: f.Message}
}

// Status is the outcome of a Submit call
type Status struct {
	Kind    Kind
	Message string
	Errors  []string
}

// Class returns the CSS modifier for the status banner
func (s Status) Class() string {
	switch s.Kind {
	case StatusSuccess:
		return "success"
	case StatusInvalid, StatusError:
		return "error"
	default:
		return ""
	}
}

// Controller submits a form to one deployment of the contact endpoint.
// It is safe for concurrent use; at most one submission is in flight.
type Controller struct {
	endpoint      string
	client        httpclient.Client
	fallbackEmail string

	submitting atomic.Bool

	mu      sync.Mutex
	touched map[string]bool
}

// New creates a controller for the site at baseURL
func New(baseURL string, client httpclient.Client, fallbackEmail string) *Controller {
	return &Controller{
		endpoint:      strings.TrimSuffix(baseURL, "/") + SendPath,
		client:        client,
		fallbackEmail: fallbackEmail,
		touched:       make(map[string]bool, len(fields)),
	}
}

// Touch marks a field as visited so its validation message is shown
func (c *Controller) Touch(field string) {
	c.mu.Lock()
	c.touched[field] = true
	c.mu.Unlock()
}

// Touched reports whether a field's validation message should render
func (c *Controller) Touched(field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched[field]
}

// Reset clears touched state after a successful send
func (c *Controller) Reset() {
	c.mu.Lock()
	c.touched = make(map[string]bool, len(fields))
	c.mu.Unlock()
}

// Submitting reports whether a request is in flight; the submit control is disabled meanwhile
func (c *Controller) Submitting() bool {
	return c.submitting.Load()
}

// FieldErrors returns the validation messages of touched fields, keyed by field
func (c *Controller) FieldErrors(f Form) map[string][]string {
	out := make(map[string][]string)
	for _, msg := range contact.Validate(f.request()) {
		field := fieldOf(msg)
		if c.Touched(field) {
			out[field] = append(out[field], msg)
		}
	}
	return out
}

func fieldOf(msg string) string {
	switch {
	case strings.HasPrefix(msg, "Name"):
		return FieldName
	case strings.Contains(msg, "email"):
		return FieldEmail
	case strings.HasPrefix(msg, "Subject"):
		return FieldSubject
	default:
		return FieldMessage
	}
}

// Submit validates f locally and, when valid, posts it to the endpoint.
// A Submit while another is in flight returns StatusBusy without a request.
func (c *Controller) Submit(ctx context.Context, f Form) Status {
	for _, field := range fields {
		c.Touch(field)
	}

	if errs := contact.Validate(f.request()); len(errs) > 0 {
		return Status{Kind: StatusInvalid, Message: MsgFixErrors, Errors: errs}
	}

	if !c.submitting.CompareAndSwap(false, true) {
		return Status{Kind: StatusBusy, Message: MsgInFlight}
	}
	defer c.submitting.Store(false)

	resp, err := httpclient.PostJSON(ctx, c.client, c.endpoint, f.request())
	if err != nil {
		return c.failure()
	}
	defer resp.Body.Close()

	var body models.ContactResponse
	// non-JSON bodies (proxies, HTML error pages) fall through to status-based mapping
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64*1024)).Decode(&body)

	status := c.mapResponse(resp.StatusCode, body)
	if status.Kind == StatusSuccess {
		c.Reset()
	}
	return status
}

func (c *Controller) mapResponse(code int, body models.ContactResponse) Status {
	switch {
	case code >= 200 && code < 300:
		return Status{Kind: StatusSuccess, Message: MsgSent}
	case code == http.StatusTooManyRequests:
		return Status{Kind: StatusError, Message: MsgSlowDown}
	case code >= 400 && code < 500 && len(body.Errors) > 0:
		return Status{Kind: StatusError, Message: MsgFixErrors, Errors: body.Errors}
	case code >= 400 && code < 500 && body.Error != "":
		return Status{Kind: StatusError, Message: body.Error}
	default:
		return c.failure()
	}
}

func (c *Controller) failure() Status {
	return Status{Kind: StatusError, Message: fmt.Sprintf("%s %s.", MsgFailureBase, c.fallbackEmail)}
}
