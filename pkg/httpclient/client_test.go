package httpclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	var gotBody map[string]string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "  created  ")
	}))
	defer srv.Close()

	resp, err := PostJSON(context.Background(), NewStandardClient(), srv.URL, map[string]string{"hello": "world"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{"hello": "world"}, gotBody)
	assert.Equal(t, "created", ReadBody(resp, 1024))
}

func TestPostJSON_UnencodablePayload(t *testing.T) {
	_, err := PostJSON(context.Background(), NewStandardClient(), "http://localhost", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode request body")
}

func TestClientTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := Get(context.Background(), NewClientWithTimeout(50*time.Millisecond), srv.URL)
	require.Error(t, err)
}

func TestReadBody_Limit(t *testing.T) {
	resp := &http.Response{Body: io.NopCloser(strings.NewReader("abcdefghij"))}
	assert.Equal(t, "abcd", ReadBody(resp, 4))
}
