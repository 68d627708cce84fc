package domain

import (
	"context"
	"time"
)

//go:generate mockgen -destination mocks/mock_collaborators.go -package mocks github.com/dripkit/dripkit/internal/domain TemplateRenderer,EmailSender,WebhookClient,AuditSink,NotificationService

// RenderedEmail is the output of rendering a template for a contact
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

// TemplateRenderer renders a stored template against contact data.
// Returns ErrTemplateNotFound for unknown template IDs.
type TemplateRenderer interface {
	Render(ctx context.Context, workspaceID, templateID string, data map[string]any) (*RenderedEmail, error)
}

// OutboundEmail is a fully rendered message ready to send
type OutboundEmail struct {
	To      string
	From    string
	Subject string
	HTML    string
	Text    string
}

// EmailSender delivers one rendered email and returns the provider message ID
type EmailSender interface {
	Send(ctx context.Context, email *OutboundEmail) (string, error)
}

// WebhookRequest describes one outbound webhook call
type WebhookRequest struct {
	URL     string
	Method  string
	Headers map[string]string
	Payload map[string]any
	Timeout time.Duration
}

// WebhookResponse is the outcome of a webhook call
type WebhookResponse struct {
	StatusCode int
	Body       map[string]any
}

// WebhookClient performs outbound webhook calls with a bounded timeout
type WebhookClient interface {
	Call(ctx context.Context, req *WebhookRequest) (*WebhookResponse, error)
}

// AuditSink records engine events. Best effort: a failing sink must never
// abort the workflow step that produced the event.
type AuditSink interface {
	Record(ctx context.Context, workspaceID, eventType string, payload map[string]any) error
}

// NotificationService alerts operators about permanently failed executions.
// Best effort, same as AuditSink.
type NotificationService interface {
	NotifyFailure(ctx context.Context, workspaceID string, enrollment *Enrollment, execution *Execution) error
}
