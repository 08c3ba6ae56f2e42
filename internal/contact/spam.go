package contact

import (
	"strings"

	"github.com/itmade/itmade-api/internal/models"
)

// spamKeywords is matched case-insensitively against name, subject and message.
// It is a best-effort filter and not a security boundary.
var spamKeywords = []string{"viagra", "casino", "lottery", "winner", "prize", "click here"}

// IsSpam reports whether the submission contains a denylisted phrase.
// The email address is not inspected.
func IsSpam(req *models.ContactRequest) bool {
	text := strings.ToLower(req.Name + " " + req.Subject + " " + req.Message)
	for _, keyword := range spamKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
