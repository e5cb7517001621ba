package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/salvaalejos/ceitm-web/internal/models"
	appErrors "github.com/salvaalejos/ceitm-web/pkg/errors"
)

type auditReader interface {
	List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error)
}

// AuditService exposes the read side of the audit trail.
type AuditService struct {
	audit  auditReader
	logger *zap.Logger
}

// NewAuditService constructs an AuditService.
func NewAuditService(audit auditReader, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{audit: audit, logger: logger}
}

// List returns audit entries newest first, optionally filtered by module.
func (s *AuditService) List(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, int, error) {
	entries, total, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit entries")
	}
	return entries, total, nil
}
