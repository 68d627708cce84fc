package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockTemplateRenderer is a mock of TemplateRenderer interface
type MockTemplateRenderer struct {
	ctrl     *gomock.Controller
	recorder *MockTemplateRendererMockRecorder
}

// MockTemplateRendererMockRecorder is the mock recorder for MockTemplateRenderer
type MockTemplateRendererMockRecorder struct {
	mock *MockTemplateRenderer
}

// NewMockTemplateRenderer creates a new mock instance
func NewMockTemplateRenderer(ctrl *gomock.Controller) *MockTemplateRenderer {
	mock := &MockTemplateRenderer{ctrl: ctrl}
	mock.recorder = &MockTemplateRendererMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockTemplateRenderer) EXPECT() *MockTemplateRendererMockRecorder {
	return m.recorder
}

// Render mocks base method
func (m *MockTemplateRenderer) Render(ctx context.Context, workspaceID, templateID string, data map[string]any) (*domain.RenderedEmail, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Render", ctx, workspaceID, templateID, data)
	ret0, _ := ret[0].(*domain.RenderedEmail)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Render indicates an expected call of Render
func (mr *MockTemplateRendererMockRecorder) Render(ctx, workspaceID, templateID, data interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Render", reflect.TypeOf((*MockTemplateRenderer)(nil).Render), ctx, workspaceID, templateID, data)
}

// MockEmailSender is a mock of EmailSender interface
type MockEmailSender struct {
	ctrl     *gomock.Controller
	recorder *MockEmailSenderMockRecorder
}

// MockEmailSenderMockRecorder is the mock recorder for MockEmailSender
type MockEmailSenderMockRecorder struct {
	mock *MockEmailSender
}

// NewMockEmailSender creates a new mock instance
func NewMockEmailSender(ctrl *gomock.Controller) *MockEmailSender {
	mock := &MockEmailSender{ctrl: ctrl}
	mock.recorder = &MockEmailSenderMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockEmailSender) EXPECT() *MockEmailSenderMockRecorder {
	return m.recorder
}

// Send mocks base method
func (m *MockEmailSender) Send(ctx context.Context, email *domain.OutboundEmail) (string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Send", ctx, email)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Send indicates an expected call of Send
func (mr *MockEmailSenderMockRecorder) Send(ctx, email interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Send", reflect.TypeOf((*MockEmailSender)(nil).Send), ctx, email)
}

// MockWebhookClient is a mock of WebhookClient interface
type MockWebhookClient struct {
	ctrl     *gomock.Controller
	recorder *MockWebhookClientMockRecorder
}

// MockWebhookClientMockRecorder is the mock recorder for MockWebhookClient
type MockWebhookClientMockRecorder struct {
	mock *MockWebhookClient
}

// NewMockWebhookClient creates a new mock instance
func NewMockWebhookClient(ctrl *gomock.Controller) *MockWebhookClient {
	mock := &MockWebhookClient{ctrl: ctrl}
	mock.recorder = &MockWebhookClientMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockWebhookClient) EXPECT() *MockWebhookClientMockRecorder {
	return m.recorder
}

// Call mocks base method
func (m *MockWebhookClient) Call(ctx context.Context, req *domain.WebhookRequest) (*domain.WebhookResponse, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Call", ctx, req)
	ret0, _ := ret[0].(*domain.WebhookResponse)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Call indicates an expected call of Call
func (mr *MockWebhookClientMockRecorder) Call(ctx, req interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Call", reflect.TypeOf((*MockWebhookClient)(nil).Call), ctx, req)
}

// MockAuditSink is a mock of AuditSink interface
type MockAuditSink struct {
	ctrl     *gomock.Controller
	recorder *MockAuditSinkMockRecorder
}

// MockAuditSinkMockRecorder is the mock recorder for MockAuditSink
type MockAuditSinkMockRecorder struct {
	mock *MockAuditSink
}

// NewMockAuditSink creates a new mock instance
func NewMockAuditSink(ctrl *gomock.Controller) *MockAuditSink {
	mock := &MockAuditSink{ctrl: ctrl}
	mock.recorder = &MockAuditSinkMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockAuditSink) EXPECT() *MockAuditSinkMockRecorder {
	return m.recorder
}

// Record mocks base method
func (m *MockAuditSink) Record(ctx context.Context, workspaceID, eventType string, payload map[string]any) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Record", ctx, workspaceID, eventType, payload)
	ret0, _ := ret[0].(error)
	return ret0
}

// Record indicates an expected call of Record
func (mr *MockAuditSinkMockRecorder) Record(ctx, workspaceID, eventType, payload interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Record", reflect.TypeOf((*MockAuditSink)(nil).Record), ctx, workspaceID, eventType, payload)
}

// MockNotificationService is a mock of NotificationService interface
type MockNotificationService struct {
	ctrl     *gomock.Controller
	recorder *MockNotificationServiceMockRecorder
}

// MockNotificationServiceMockRecorder is the mock recorder for MockNotificationService
type MockNotificationServiceMockRecorder struct {
	mock *MockNotificationService
}

// NewMockNotificationService creates a new mock instance
func NewMockNotificationService(ctrl *gomock.Controller) *MockNotificationService {
	mock := &MockNotificationService{ctrl: ctrl}
	mock.recorder = &MockNotificationServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockNotificationService) EXPECT() *MockNotificationServiceMockRecorder {
	return m.recorder
}

// NotifyFailure mocks base method
func (m *MockNotificationService) NotifyFailure(ctx context.Context, workspaceID string, enrollment *domain.Enrollment, execution *domain.Execution) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "NotifyFailure", ctx, workspaceID, enrollment, execution)
	ret0, _ := ret[0].(error)
	return ret0
}

// NotifyFailure indicates an expected call of NotifyFailure
func (mr *MockNotificationServiceMockRecorder) NotifyFailure(ctx, workspaceID, enrollment, execution interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "NotifyFailure", reflect.TypeOf((*MockNotificationService)(nil).NotifyFailure), ctx, workspaceID, enrollment, execution)
}
