package services_test

import (
	"context"

	"github.com/itmade/itmade-api/pkg/mailer"
	"github.com/stretchr/testify/mock"
)

// MockTransport is a mock implementation of mailer.Transport
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Name() string {
	return "emailjs"
}

func (m *MockTransport) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockTransport) Send(ctx context.Context, msg *mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockCaptcha is a mock implementation of services.CaptchaVerifier
type MockCaptcha struct {
	mock.Mock
}

func (m *MockCaptcha) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCaptcha) Verify(ctx context.Context, token, remoteIP string) error {
	args := m.Called(ctx, token, remoteIP)
	return args.Error(0)
}
