package recaptcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/itmade/itmade-api/pkg/httpclient"
)

// VerifyURL is Google's token verification endpoint
const VerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ErrVerificationFailed means Google answered but rejected the token
var ErrVerificationFailed = errors.New("recaptcha verification failed")

// Response represents the response from Google's reCAPTCHA verification API
type Response struct {
	Success     bool     `json:"success"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier handles reCAPTCHA verification
type Verifier struct {
	secretKey  string
	verifyURL  string
	httpClient httpclient.Client
}

// NewVerifier creates a new reCAPTCHA verifier
func NewVerifier(secretKey string, httpClient httpclient.Client) *Verifier {
	return &Verifier{
		secretKey:  secretKey,
		verifyURL:  VerifyURL,
		httpClient: httpClient,
	}
}

// Enabled reports whether a secret key is configured
func (v *Verifier) Enabled() bool {
	return v != nil && v.secretKey != ""
}

// Verify verifies a reCAPTCHA token with Google's API.
// remoteIP is optional and forwarded to Google when present.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: missing token", ErrVerificationFailed)
	}

	data := url.Values{}
	data.Set("secret", v.secretKey)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	resp, err := httpclient.PostForm(ctx, v.httpClient, v.verifyURL, data.Encode())
	if err != nil {
		return fmt.Errorf("failed to verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode recaptcha response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("%w: %s", ErrVerificationFailed, strings.Join(result.ErrorCodes, ","))
	}

	return nil
}
