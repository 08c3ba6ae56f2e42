package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/itmade/itmade-api/config"
	"github.com/itmade/itmade-api/internal/middleware"
	"github.com/itmade/itmade-api/internal/models"
	"github.com/itmade/itmade-api/internal/services"
	apperrors "github.com/itmade/itmade-api/pkg/errors"
)

// healthTimestampLayout matches JavaScript's Date.toISOString
const healthTimestampLayout = "2006-01-02T15:04:05.000Z"

type ContactHandler struct {
	service services.ContactServiceInterface
	config  *config.Config
	now     func() time.Time
}

func NewContactHandler(service services.ContactServiceInterface, cfg *config.Config) *ContactHandler {
	return &ContactHandler{
		service: service,
		config:  cfg,
		now:     time.Now,
	}
}

// SendEmail handles POST /api/contact/send-email
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req models.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			attachError(c, err)
			c.JSON(http.StatusRequestEntityTooLarge, models.ContactResponse{Error: "Request body too large"})
			return
		}
		attachError(c, apperrors.InvalidInputError(err.Error()))
		c.JSON(http.StatusBadRequest, models.ContactResponse{Errors: []string{"Invalid request body"}})
		return
	}

	meta := models.SubmissionMeta{
		RequestID:  middleware.GetRequestID(c),
		ClientIP:   c.ClientIP(),
		ReceivedAt: h.now(),
	}

	result, err := h.service.Submit(c.Request.Context(), &req, meta)
	attachError(c, err)

	c.JSON(result.Outcome.HTTPStatus(), result.Response)
}

// Health handles GET /api/contact/health
func (h *ContactHandler) Health(c *gin.Context) {
	resp := gin.H{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(healthTimestampLayout),
	}
	resp[h.service.TransportName()+"_configured"] = h.service.TransportConfigured()

	c.JSON(http.StatusOK, resp)
}

// TestConfig handles GET /api/test-config. It reports which credentials are
// present, never their values, and is only routed outside production.
func (h *ContactHandler) TestConfig(c *gin.Context) {
	if h.config.IsProduction() {
		respondError(c, http.StatusNotFound, "Route not found", nil)
		return
	}

	resp := gin.H{
		"transport": h.service.TransportName(),
		"fields":    h.config.Email.CredentialStatus(),
	}
	resp[h.service.TransportName()+"_configured"] = h.service.TransportConfigured()

	c.JSON(http.StatusOK, resp)
}
