package models

import (
	"net/http"
	"time"
)

// ContactRequest represents a contact form submission as received from the site.
// Fields may be missing; validation reports them rather than the JSON binding.
type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
	RecaptchaToken string `json:"recaptchaToken,omitempty"`
}

// SanitizedSubmission is a submission that passed validation and the spam check,
// with free text escaped and the email canonicalised
type SanitizedSubmission struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// SubmissionMeta describes where a submission came from
type SubmissionMeta struct {
	RequestID  string
	ClientIP   string
	ReceivedAt time.Time
}

// ContactResponse is the JSON body returned by the contact endpoint
type ContactResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Details string   `json:"details,omitempty"`
}

// Outcome is the terminal state of the submission pipeline
type Outcome string

const (
	OutcomeSent            Outcome = "sent"
	OutcomeRejected        Outcome = "invalid"
	OutcomeSpamRejected    Outcome = "spam"
	OutcomeCaptchaRejected Outcome = "captcha_failed"
	OutcomeConfigError     Outcome = "config_error"
	OutcomeTransportFailed Outcome = "transport_failed"
)

// HTTPStatus maps an outcome to the status code of the contact endpoint
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeSent:
		return http.StatusOK
	case OutcomeRejected, OutcomeSpamRejected, OutcomeCaptchaRejected:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// SubmissionResult pairs the pipeline outcome with the response body to send
type SubmissionResult struct {
	Outcome  Outcome
	Response ContactResponse
}

// ContactHealthResponse is returned by the contact health endpoint.
// The transport flag is added under "<transport>_configured".
type ContactHealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
