package contact

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/itmade/itmade-api/internal/models"
)

// Field limits, measured in characters after trimming
const (
	NameMinLength    = 2
	NameMaxLength    = 100
	SubjectMinLength = 3
	SubjectMaxLength = 200
	MessageMinLength = 10
	MessageMaxLength = 2000
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func emailValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// length returns the number of characters of s once surrounding whitespace is removed
func length(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

// IsValidEmail reports whether s (trimmed) is a well-formed email address
func IsValidEmail(s string) bool {
	return emailValidator().Var(strings.TrimSpace(s), "required,email") == nil
}

// Validate returns every constraint the submission violates, in a fixed order:
// name, email, subject and message minimums first, then the maximum lengths.
// An empty result means the submission may proceed.
func Validate(req *models.ContactRequest) []string {
	errs := []string{}

	if length(req.Name) < NameMinLength {
		errs = append(errs, fmt.Sprintf("Name must be at least %d characters", NameMinLength))
	}

	if !IsValidEmail(req.Email) {
		errs = append(errs, "Invalid email address")
	}

	if length(req.Subject) < SubjectMinLength {
		errs = append(errs, fmt.Sprintf("Subject must be at least %d characters", SubjectMinLength))
	}

	if length(req.Message) < MessageMinLength {
		errs = append(errs, fmt.Sprintf("Message must be at least %d characters", MessageMinLength))
	}

	if length(req.Name) > NameMaxLength {
		errs = append(errs, fmt.Sprintf("Name is too long (max %d characters)", NameMaxLength))
	}
	if length(req.Subject) > SubjectMaxLength {
		errs = append(errs, fmt.Sprintf("Subject is too long (max %d characters)", SubjectMaxLength))
	}
	if length(req.Message) > MessageMaxLength {
		errs = append(errs, fmt.Sprintf("Message is too long (max %d characters)", MessageMaxLength))
	}

	return errs
}
