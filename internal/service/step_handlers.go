package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dripkit/dripkit/internal/domain"
)

// StepContext carries everything a handler needs to run one step for one
// enrollment. The execution is already claimed processing by the caller.
type StepContext struct {
	WorkspaceID string
	Automation  *domain.Automation
	Step        *domain.Step
	Enrollment  *domain.Enrollment
	Contact     *domain.Contact
	Execution   *domain.Execution

	// PrevStatus is the status the execution held before being claimed.
	// It is how a wait step tells its first pass (pending) apart from its
	// firing (waiting).
	PrevStatus domain.ExecutionStatus
}

// StepResult is the outcome of a successful handler invocation
type StepResult struct {
	// Result is stored on the execution row
	Result map[string]any

	// WaitUntil, when set, parks the execution as waiting until the given
	// time instead of completing it. No successor is created yet.
	WaitUntil *time.Time

	// Branch is set by condition steps: the next step is the branch target
	// rather than the sequential successor. A nil BranchTargetID with Branch
	// set terminates the enrollment's branch.
	Branch         bool
	BranchTargetID *string
}

// StepHandler executes one step kind
type StepHandler interface {
	Execute(ctx context.Context, sc *StepContext) (*StepResult, error)
}

// ---------------------------------------------------------------------------

// EmailStepHandler renders and sends a templated email
type EmailStepHandler struct {
	renderer domain.TemplateRenderer
	sender   domain.EmailSender
}

// NewEmailStepHandler creates a new EmailStepHandler
func NewEmailStepHandler(renderer domain.TemplateRenderer, sender domain.EmailSender) *EmailStepHandler {
	return &EmailStepHandler{renderer: renderer, sender: sender}
}

func (h *EmailStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	cfg := sc.Step.Config.Email
	if cfg == nil {
		return nil, domain.NewPermanentError("email step has no email config", nil)
	}

	data := map[string]any{
		"contact":       contactTemplateData(sc.Contact),
		"enrollment_id": sc.Enrollment.ID,
		"automation":    map[string]any{"id": sc.Automation.ID, "name": sc.Automation.Name},
	}

	rendered, err := h.renderer.Render(ctx, sc.WorkspaceID, cfg.TemplateID, data)
	if err != nil {
		// missing templates are permanent via IsPermanent; render failures on
		// a bad template body will not fix themselves either
		return nil, fmt.Errorf("failed to render template %s: %w", cfg.TemplateID, err)
	}

	subject := rendered.Subject
	if cfg.SubjectOverride != nil && *cfg.SubjectOverride != "" {
		subject = *cfg.SubjectOverride
	}

	email := &domain.OutboundEmail{
		To:      sc.Contact.Email,
		Subject: subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	}
	if cfg.FromOverride != nil && *cfg.FromOverride != "" {
		email.From = *cfg.FromOverride
	}

	messageID, err := h.sender.Send(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	return &StepResult{
		Result: map[string]any{
			"message_id":  messageID,
			"template_id": cfg.TemplateID,
			"to":          sc.Contact.Email,
		},
	}, nil
}

// ---------------------------------------------------------------------------

// WaitStepHandler delays the enrollment. First pass parks the execution as
// waiting with a future scheduled_at; when the scheduler picks it up again at
// that time it completes immediately, its only job being the delay itself.
type WaitStepHandler struct {
	now func() time.Time
}

// NewWaitStepHandler creates a new WaitStepHandler
func NewWaitStepHandler() *WaitStepHandler {
	return &WaitStepHandler{now: func() time.Time { return time.Now().UTC() }}
}

func (h *WaitStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	cfg := sc.Step.Config.Wait
	if cfg == nil {
		return nil, domain.NewPermanentError("wait step has no wait config", nil)
	}

	if sc.PrevStatus == domain.ExecutionStatusWaiting {
		// the wait fired, nothing left to do
		return &StepResult{Result: map[string]any{"waited": true}}, nil
	}

	duration, err := cfg.AsDuration()
	if err != nil {
		return nil, domain.NewPermanentError("malformed wait config", err)
	}

	until := h.now().Add(duration)
	return &StepResult{
		WaitUntil: &until,
		Result:    map[string]any{"wait_until": until.Format(time.RFC3339)},
	}, nil
}

// ---------------------------------------------------------------------------

// ConditionStepHandler evaluates a predicate and selects the branch target
type ConditionStepHandler struct {
	evaluator *ConditionEvaluator
}

// NewConditionStepHandler creates a new ConditionStepHandler
func NewConditionStepHandler(evaluator *ConditionEvaluator) *ConditionStepHandler {
	return &ConditionStepHandler{evaluator: evaluator}
}

func (h *ConditionStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	cfg := sc.Step.Config.Condition
	if cfg == nil {
		return nil, domain.NewPermanentError("condition step has no condition config", nil)
	}

	met, err := h.evaluator.Evaluate(cfg.Condition, sc.Contact)
	if err != nil {
		return nil, err
	}

	target := cfg.FailureStepID
	if met {
		target = cfg.SuccessStepID
	}
	if target != nil && sc.Automation.GetStepByID(*target) == nil {
		return nil, domain.NewPermanentError(
			fmt.Sprintf("condition branch target %s does not exist", *target), nil)
	}

	return &StepResult{
		Result:         map[string]any{"condition_met": met},
		Branch:         true,
		BranchTargetID: target,
	}, nil
}

// ---------------------------------------------------------------------------

// TagStepHandler adds or removes tags on the contact. The mutation is
// idempotent set membership, so a retried step never errors on tags already
// in their target state.
type TagStepHandler struct {
	contacts domain.ContactRepository
	remove   bool
}

// NewTagAddStepHandler creates a handler adding tags
func NewTagAddStepHandler(contacts domain.ContactRepository) *TagStepHandler {
	return &TagStepHandler{contacts: contacts}
}

// NewTagRemoveStepHandler creates a handler removing tags
func NewTagRemoveStepHandler(contacts domain.ContactRepository) *TagStepHandler {
	return &TagStepHandler{contacts: contacts, remove: true}
}

func (h *TagStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	var cfg *domain.TagStepConfig
	if h.remove {
		cfg = sc.Step.Config.TagRemove
	} else {
		cfg = sc.Step.Config.TagAdd
	}
	if cfg == nil {
		return nil, domain.NewPermanentError("tag step has no tag config", nil)
	}

	if h.remove {
		removed, err := h.contacts.RemoveTags(ctx, sc.WorkspaceID, sc.Contact.Email, cfg.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to remove tags: %w", err)
		}
		return &StepResult{Result: map[string]any{"tags_removed": removed}}, nil
	}

	added, err := h.contacts.AddTags(ctx, sc.WorkspaceID, sc.Contact.Email, cfg.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to add tags: %w", err)
	}
	return &StepResult{Result: map[string]any{"tags_added": added}}, nil
}

// ---------------------------------------------------------------------------

// UpdateFieldStepHandler writes one standard contact field
type UpdateFieldStepHandler struct {
	contacts domain.ContactRepository
}

// NewUpdateFieldStepHandler creates a new UpdateFieldStepHandler
func NewUpdateFieldStepHandler(contacts domain.ContactRepository) *UpdateFieldStepHandler {
	return &UpdateFieldStepHandler{contacts: contacts}
}

func (h *UpdateFieldStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	cfg := sc.Step.Config.UpdateField
	if cfg == nil {
		return nil, domain.NewPermanentError("update_field step has no config", nil)
	}

	if !domain.IsMutableContactField(cfg.Field) {
		return nil, domain.NewPermanentError(
			fmt.Sprintf("field %s is not a known mutable contact field", cfg.Field), nil)
	}

	err := h.contacts.UpdateFields(ctx, sc.WorkspaceID, sc.Contact.Email, map[string]string{cfg.Field: cfg.Value})
	if err != nil {
		return nil, fmt.Errorf("failed to update contact field: %w", err)
	}

	return &StepResult{
		Result: map[string]any{"field": cfg.Field, "value": cfg.Value},
	}, nil
}

// ---------------------------------------------------------------------------

// WebhookStepHandler POSTs a JSON payload with the contact snapshot and the
// automation/step identifiers to a configured endpoint
type WebhookStepHandler struct {
	client domain.WebhookClient
}

// NewWebhookStepHandler creates a new WebhookStepHandler
func NewWebhookStepHandler(client domain.WebhookClient) *WebhookStepHandler {
	return &WebhookStepHandler{client: client}
}

func (h *WebhookStepHandler) Execute(ctx context.Context, sc *StepContext) (*StepResult, error) {
	cfg := sc.Step.Config.Webhook
	if cfg == nil {
		return nil, domain.NewPermanentError("webhook step has no webhook config", nil)
	}

	payload := map[string]any{
		"automation_id": sc.Automation.ID,
		"step_id":       sc.Step.ID,
		"enrollment_id": sc.Enrollment.ID,
		"contact":       contactTemplateData(sc.Contact),
	}
	for key, value := range cfg.Payload {
		payload[key] = value
	}

	resp, err := h.client.Call(ctx, &domain.WebhookRequest{
		URL:     cfg.URL,
		Method:  cfg.Method,
		Headers: cfg.Headers,
		Payload: payload,
		Timeout: defaultWebhookTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &StepResult{
		Result: map[string]any{"status_code": resp.StatusCode},
	}, nil
}

// contactTemplateData flattens the contact into the shape templates and
// webhook payloads consume
func contactTemplateData(c *domain.Contact) map[string]any {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return map[string]any{
		"email":       c.Email,
		"external_id": deref(c.ExternalID),
		"first_name":  deref(c.FirstName),
		"last_name":   deref(c.LastName),
		"phone":       deref(c.Phone),
		"country":     deref(c.Country),
		"tags":        c.Tags,
	}
}
