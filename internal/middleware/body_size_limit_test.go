package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newBodyRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(BodySizeLimitMiddleware(limit))
	router.POST("/echo", func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.String(http.StatusOK, string(body))
	})
	return router
}

func TestBodySizeLimit_AllowsSmallBodies(t *testing.T) {
	w := httptest.NewRecorder()
	newBodyRouter(16).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("hello")))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestBodySizeLimit_RejectsDeclaredOversize(t *testing.T) {
	w := httptest.NewRecorder()
	newBodyRouter(4).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader("too long")))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), "Request body too large")
}

func TestBodySizeLimit_CapsUndeclaredLength(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/echo", io.NopCloser(strings.NewReader("way too long")))
	req.ContentLength = -1

	w := httptest.NewRecorder()
	newBodyRouter(4).ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
