package services

import (
	"context"

	"github.com/itmade/itmade-api/internal/models"
)

// ContactServiceInterface defines the interface for contact service operations
type ContactServiceInterface interface {
	Submit(ctx context.Context, req *models.ContactRequest, meta models.SubmissionMeta) (*models.SubmissionResult, error)
	TransportName() string
	TransportConfigured() bool
}

// Ensure services implement their interfaces
var _ ContactServiceInterface = (*ContactService)(nil)
