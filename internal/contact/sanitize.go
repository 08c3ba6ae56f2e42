package contact

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/itmade/itmade-api/internal/models"
)

// SanitizeText trims s and escapes the characters that carry meaning in HTML
// (< > & ' ") so it can be embedded in an email body or a log line.
//
// Existing entities are decoded before escaping, which makes the function
// idempotent: SanitizeText(SanitizeText(s)) == SanitizeText(s).
func SanitizeText(s string) string {
	s = html.UnescapeString(strings.TrimSpace(s))
	s = strings.TrimSpace(norm.NFC.String(s))
	return html.EscapeString(s)
}

// NormalizeEmail trims the address and lowercases it
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Sanitize produces the outbound form of a validated submission. It never fails.
func Sanitize(req *models.ContactRequest) models.SanitizedSubmission {
	return models.SanitizedSubmission{
		Name:    SanitizeText(req.Name),
		Email:   NormalizeEmail(req.Email),
		Subject: SanitizeText(req.Subject),
		Message: SanitizeText(req.Message),
	}
}
