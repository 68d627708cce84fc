package service

import (
	"context"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/dripkit/dripkit/pkg/logger"
)

// LogAuditSink implements domain.AuditSink by writing structured log lines.
// Deployments with a real event pipeline swap in their own sink.
type LogAuditSink struct {
	logger logger.Logger
}

// NewLogAuditSink creates a new LogAuditSink
func NewLogAuditSink(logger logger.Logger) *LogAuditSink {
	return &LogAuditSink{logger: logger}
}

// Record writes the audit event
func (s *LogAuditSink) Record(ctx context.Context, workspaceID, eventType string, payload map[string]any) error {
	s.logger.WithFields(map[string]interface{}{
		"workspace_id": workspaceID,
		"event_type":   eventType,
		"payload":      payload,
	}).Info("Audit event")
	return nil
}

// LogNotificationService implements domain.NotificationService by logging
// permanent failures at error level
type LogNotificationService struct {
	logger logger.Logger
}

// NewLogNotificationService creates a new LogNotificationService
func NewLogNotificationService(logger logger.Logger) *LogNotificationService {
	return &LogNotificationService{logger: logger}
}

// NotifyFailure reports a permanently failed execution
func (s *LogNotificationService) NotifyFailure(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution) error {
	fields := map[string]interface{}{
		"workspace_id": workspaceID,
	}
	if enrollment != nil {
		fields["enrollment_id"] = enrollment.ID
		fields["automation_id"] = enrollment.AutomationID
		fields["contact_email"] = enrollment.ContactEmail
	}
	if execution != nil {
		fields["execution_id"] = execution.ID
		fields["step_id"] = execution.StepID
		fields["attempts"] = execution.Attempts
		if execution.Error != nil {
			fields["error"] = *execution.Error
		}
	}
	s.logger.WithFields(fields).Error("Execution failed permanently")
	return nil
}
