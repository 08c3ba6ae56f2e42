package models

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcome_HTTPStatus(t *testing.T) {
	tests := map[Outcome]int{
		OutcomeSent:            http.StatusOK,
		OutcomeRejected:        http.StatusBadRequest,
		OutcomeSpamRejected:    http.StatusBadRequest,
		OutcomeCaptchaRejected: http.StatusBadRequest,
		OutcomeConfigError:     http.StatusInternalServerError,
		OutcomeTransportFailed: http.StatusInternalServerError,
	}

	for outcome, status := range tests {
		t.Run(string(outcome), func(t *testing.T) {
			assert.Equal(t, status, outcome.HTTPStatus())
		})
	}
}
