package templates

import (
	"context"
	"fmt"
	"sync"

	"github.com/dripkit/dripkit/internal/domain"
	"github.com/osteele/liquid"
)

// EmailTemplate is one stored template: subject and bodies are all Liquid
type EmailTemplate struct {
	ID      string
	Subject string
	HTML    string
	Text    string
}

// Store resolves template IDs to templates for a workspace
type Store interface {
	GetTemplate(ctx context.Context, workspaceID, templateID string) (*EmailTemplate, error)
}

// InMemoryStore is a Store backed by a map, keyed workspaceID/templateID
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[string]*EmailTemplate
}

// NewInMemoryStore creates an empty in-memory template store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{templates: make(map[string]*EmailTemplate)}
}

// Put registers a template for a workspace
func (s *InMemoryStore) Put(workspaceID string, tmpl *EmailTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[workspaceID+"/"+tmpl.ID] = tmpl
}

// GetTemplate implements Store
func (s *InMemoryStore) GetTemplate(_ context.Context, workspaceID, templateID string) (*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tmpl, ok := s.templates[workspaceID+"/"+templateID]
	if !ok {
		return nil, &domain.ErrTemplateNotFound{TemplateID: templateID}
	}
	return tmpl, nil
}

// LiquidRenderer implements domain.TemplateRenderer with the Liquid engine
type LiquidRenderer struct {
	store  Store
	engine *liquid.Engine
}

// NewLiquidRenderer creates a renderer over the given template store
func NewLiquidRenderer(store Store) *LiquidRenderer {
	return &LiquidRenderer{
		store:  store,
		engine: liquid.NewEngine(),
	}
}

// Render resolves the template and renders subject and bodies against data
func (r *LiquidRenderer) Render(ctx context.Context, workspaceID, templateID string, data map[string]any) (*domain.RenderedEmail, error) {
	tmpl, err := r.store.GetTemplate(ctx, workspaceID, templateID)
	if err != nil {
		return nil, err
	}

	subject, err := r.engine.ParseAndRenderString(tmpl.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render subject: %w", err)
	}

	html, err := r.engine.ParseAndRenderString(tmpl.HTML, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render html body: %w", err)
	}

	var text string
	if tmpl.Text != "" {
		text, err = r.engine.ParseAndRenderString(tmpl.Text, data)
		if err != nil {
			return nil, fmt.Errorf("failed to render text body: %w", err)
		}
	}

	return &domain.RenderedEmail{
		Subject: subject,
		HTML:    html,
		Text:    text,
	}, nil
}
