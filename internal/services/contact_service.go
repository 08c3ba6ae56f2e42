package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/internal/contact"
	"github.com/itmade/itmade-api/internal/models"
	"github.com/itmade/itmade-api/pkg/alerting"
	apperrors "github.com/itmade/itmade-api/pkg/errors"
	"github.com/itmade/itmade-api/pkg/logger"
	"github.com/itmade/itmade-api/pkg/mailer"
	"github.com/itmade/itmade-api/pkg/metrics"
	"github.com/itmade/itmade-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// User-facing messages of the contact endpoint
const (
	MsgSent             = "Your message has been sent successfully!"
	MsgSpam             = "Content not permitted"
	MsgCaptchaFailed    = "Captcha verification failed"
	MsgServiceDown      = "Email service is temporarily unavailable. Please try again later."
	MsgTransportFailure = "Failed to send your message. Please try again later."
)

const defaultSendTimeout = 15 * time.Second

// CaptchaVerifier checks a client-side captcha token
type CaptchaVerifier interface {
	Enabled() bool
	Verify(ctx context.Context, token, remoteIP string) error
}

// ContactService runs contact form submissions through validation, spam
// filtering, sanitization and delivery
type ContactService struct {
	config    *config.Config
	transport mailer.Transport
	captcha   CaptchaVerifier
	now       func() time.Time
}

// NewContactService creates a new contact service instance.
// captcha may be nil when no captcha is configured.
func NewContactService(cfg *config.Config, transport mailer.Transport, captcha CaptchaVerifier) *ContactService {
	return &ContactService{
		config:    cfg,
		transport: transport,
		captcha:   captcha,
		now:       time.Now,
	}
}

// TransportName returns the name of the configured email transport
func (s *ContactService) TransportName() string {
	return s.transport.Name()
}

// TransportConfigured reports whether the transport has every credential it needs
func (s *ContactService) TransportConfigured() bool {
	return s.transport.Configured()
}

// Submit processes one submission. The returned result is always non-nil and
// carries the response body; the error classifies non-sent outcomes for logging.
func (s *ContactService) Submit(ctx context.Context, req *models.ContactRequest, meta models.SubmissionMeta) (*models.SubmissionResult, error) {
	if meta.RequestID == "" {
		meta.RequestID = uuid.NewString()
	}
	if meta.ReceivedAt.IsZero() {
		meta.ReceivedAt = s.now()
	}

	ctx, span := tracing.StartSpan(ctx, "contact.submit",
		attribute.String("contact.request_id", meta.RequestID),
		attribute.String("mailer.transport", s.transport.Name()),
	)
	defer span.End()
	ctx = alerting.WithRequestID(ctx, meta.RequestID)

	log := logger.With(
		zap.String("request_id", meta.RequestID),
		zap.String("client_ip", meta.ClientIP),
	)

	result, err := s.process(ctx, log, req, meta)

	span.SetAttributes(attribute.String("contact.outcome", string(result.Outcome)))
	if err != nil && result.Outcome.HTTPStatus() >= 500 {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(result.Outcome))
	}
	metrics.ContactFormSubmissions.WithLabelValues(string(result.Outcome)).Inc()

	return result, err
}

func (s *ContactService) process(ctx context.Context, log *zap.Logger, req *models.ContactRequest, meta models.SubmissionMeta) (*models.SubmissionResult, error) {
	if errs := contact.Validate(req); len(errs) > 0 {
		log.Info("Contact submission rejected", zap.Strings("errors", errs))
		return reject(models.OutcomeRejected, models.ContactResponse{Errors: errs}), apperrors.NewValidationError(errs)
	}

	// the matched keyword is neither logged nor returned
	if contact.IsSpam(req) {
		log.Warn("Contact submission flagged as spam")
		return reject(models.OutcomeSpamRejected, models.ContactResponse{Error: MsgSpam}), apperrors.ErrSpam
	}

	if s.captcha != nil && s.captcha.Enabled() {
		if err := s.captcha.Verify(ctx, req.RecaptchaToken, meta.ClientIP); err != nil {
			log.Warn("ReCAPTCHA verification failed", zap.Error(err))
			return reject(models.OutcomeCaptchaRejected, models.ContactResponse{Error: MsgCaptchaFailed}),
				errors.Join(apperrors.ErrCaptcha, err)
		}
	}

	clean := contact.Sanitize(req)

	if !s.transport.Configured() {
		return s.configurationError(ctx, log)
	}

	msg := &mailer.Message{
		FromName:    clean.Name,
		FromEmail:   clean.Email,
		ReplyTo:     clean.Email,
		Subject:     clean.Subject,
		Body:        clean.Message,
		SubmittedAt: meta.ReceivedAt,
		ClientIP:    meta.ClientIP,
		RequestID:   meta.RequestID,
	}

	timeout := s.config.Contact.SendTimeout
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	// a client that disconnects mid-send does not abort delivery
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.transport.Send(sendCtx, msg); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return s.configurationError(ctx, log)
		}

		log.Error("Failed to send contact message",
			zap.String("transport", s.transport.Name()),
			zap.String("reason", mailer.Reason(err)),
			zap.Error(err))
		alerting.CaptureError(ctx, err, map[string]string{
			"outcome":   string(models.OutcomeTransportFailed),
			"transport": s.transport.Name(),
		})

		resp := models.ContactResponse{Error: MsgTransportFailure}
		if !s.config.IsProduction() {
			resp.Details = err.Error()
		}
		return reject(models.OutcomeTransportFailed, resp), apperrors.TransportError(s.transport.Name(), err)
	}

	log.Info("Contact message sent", zap.String("transport", s.transport.Name()))

	return &models.SubmissionResult{
		Outcome:  models.OutcomeSent,
		Response: models.ContactResponse{Success: true, Message: MsgSent},
	}, nil
}

// configurationError never exposes which credential is missing to the client
func (s *ContactService) configurationError(ctx context.Context, log *zap.Logger) (*models.SubmissionResult, error) {
	err := apperrors.ConfigurationError(s.transport.Name() + " transport is not configured")
	log.Error("Email transport not configured", zap.String("transport", s.transport.Name()))
	alerting.CaptureError(ctx, err, map[string]string{
		"outcome":   string(models.OutcomeConfigError),
		"transport": s.transport.Name(),
	})

	return reject(models.OutcomeConfigError, models.ContactResponse{Error: MsgServiceDown}), err
}

func reject(outcome models.Outcome, resp models.ContactResponse) *models.SubmissionResult {
	resp.Success = false
	return &models.SubmissionResult{Outcome: outcome, Response: resp}
}
