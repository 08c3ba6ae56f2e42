package contactform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/itmade/itmade-api/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validForm() Form {
	return Form{
		Name:    "Jean Dupont",
		Email:   "jean@example.com",
		Subject: "Site vitrine",
		Message: "Bonjour, je voudrais un devis.",
	}
}

func newTestController(t *testing.T, handler http.HandlerFunc) *Controller {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", httpclient.NewStandardClient(), "contact@itmade.fr")
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestSubmit_InvalidFormMakesNoRequest(t *testing.T) {
	called := false
	c := newTestController(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	status := c.Submit(context.Background(), Form{Name: "x", Email: "nope", Subject: "ab", Message: "short"})

	assert.Equal(t, StatusInvalid, status.Kind)
	assert.Equal(t, MsgFixErrors, status.Message)
	assert.Len(t, status.Errors, 4)
	assert.Equal(t, "error", status.Class())
	assert.False(t, called)
	for _, f := range fields {
		assert.True(t, c.Touched(f), f)
	}
}

func TestSubmit_Success(t *testing.T) {
	var received map[string]string
	c := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SendPath, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respond(http.StatusOK, `{"success":true,"message":"Your message has been sent successfully!"}`)(w, r)
	})

	status := c.Submit(context.Background(), validForm())

	assert.Equal(t, StatusSuccess, status.Kind)
	assert.Equal(t, MsgSent, status.Message)
	assert.Equal(t, "success", status.Class())
	assert.Equal(t, "jean@example.com", received["email"])
	assert.False(t, c.Submitting())
	assert.False(t, c.Touched(FieldName), "touched state resets after success")
}

func TestSubmit_MapsServerAnswers(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		errors  []string
	}{
		{
			name:    "validation errors",
			status:  http.StatusBadRequest,
			body:    `{"success":false,"errors":["Invalid email address"]}`,
			message: MsgFixErrors,
			errors:  []string{"Invalid email address"},
		},
		{
			name:    "spam",
			status:  http.StatusBadRequest,
			body:    `{"success":false,"error":"Content not permitted"}`,
			message: "Content not permitted",
		},
		{
			name:    "quota",
			status:  http.StatusTooManyRequests,
			body:    `{"success":false,"error":"Too many attempts. Please try again in 15 minutes."}`,
			message: MsgSlowDown,
		},
		{
			name:    "transport failure",
			status:  http.StatusInternalServerError,
			body:    `{"success":false,"error":"Failed to send your message. Please try again later.","details":"emailjs: status 502"}`,
			message: MsgFailureBase + " contact@itmade.fr.",
		},
		{
			name:    "proxy error page",
			status:  http.StatusBadGateway,
			body:    `<html>Bad Gateway</html>`,
			message: MsgFailureBase + " contact@itmade.fr.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestController(t, respond(tt.status, tt.body))

			status := c.Submit(context.Background(), validForm())

			assert.Equal(t, StatusError, status.Kind)
			assert.Equal(t, tt.message, status.Message)
			assert.Equal(t, tt.errors, status.Errors)
			assert.NotContains(t, status.Message, "emailjs")
			assert.False(t, c.Submitting())
		})
	}
}

func TestSubmit_NetworkErrorShowsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(url, httpclient.NewStandardClient(), "contact@itmade.fr")
	status := c.Submit(context.Background(), validForm())

	assert.Equal(t, StatusError, status.Kind)
	assert.Contains(t, status.Message, "contact@itmade.fr")
	assert.False(t, c.Submitting())
}

func TestSubmit_SingleInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	c := newTestController(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		respond(http.StatusOK, `{"success":true}`)(w, r)
	})

	var wg sync.WaitGroup
	var first Status
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = c.Submit(context.Background(), validForm())
	}()

	<-entered
	assert.True(t, c.Submitting())

	second := c.Submit(context.Background(), validForm())
	assert.Equal(t, StatusBusy, second.Kind)
	assert.Equal(t, "", second.Class())

	close(release)
	wg.Wait()

	assert.Equal(t, StatusSuccess, first.Kind)
	assert.False(t, c.Submitting())
}

func TestFieldErrors_OnlyTouchedFields(t *testing.T) {
	c := New("http://localhost", httpclient.NewStandardClient(), "contact@itmade.fr")
	form := Form{Name: "x", Email: "bad"}

	assert.Empty(t, c.FieldErrors(form))

	c.Touch(FieldEmail)
	assert.Equal(t, map[string][]string{
		FieldEmail: {"Invalid email address"},
	}, c.FieldErrors(form))

	c.Touch(FieldName)
	errs := c.FieldErrors(form)
	assert.Equal(t, []string{"Name must be at least 2 characters"}, errs[FieldName])
}
