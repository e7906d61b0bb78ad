package services

import (
	"context"
	"log/slog"

	"github.com/meridianx/backoffice/internal/models"
)

// AuditService records security events. Every event is written to the
// database synchronously and mirrored to the structured log. A failed
// database write is logged but never reverses an authentication decision
// that has already been made.
type AuditService struct {
	repo   AuditLogRepository
	logger *slog.Logger
}

func NewAuditService(repo AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Log records a security event. adminID is nil when the actor could not be
// identified, e.g. a login attempt against an unknown email.
func (s *AuditService) Log(ctx context.Context, adminID *string, action string, details models.AuditDetails, ipAddress, userAgent string) {
	attrs := []any{
		slog.String("action", action),
		slog.String("ip_address", ipAddress),
	}
	if adminID != nil {
		attrs = append(attrs, slog.String("admin_id", *adminID))
	}
	s.logger.Info("audit event", attrs...)

	entry := &models.AuditLog{
		AdminID:   adminID,
		Action:    action,
		Resource:  models.AuditResourceSystem,
		Details:   details,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to persist audit event",
			slog.String("action", action),
			slog.Any("error", err))
	}
}

// List returns recent audit entries, newest first.
func (s *AuditService) List(ctx context.Context, adminID string, action string, limit, offset int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	if adminID != "" {
		return s.repo.GetByAdminID(ctx, adminID, limit, offset)
	}
	if action != "" {
		return s.repo.GetByAction(ctx, action, limit, offset)
	}
	return s.repo.ListRecent(ctx, limit, offset)
}

// Count returns the total number of audit entries.
func (s *AuditService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
