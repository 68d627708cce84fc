package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockAutomationService is a mock of AutomationService interface
type MockAutomationService struct {
	ctrl     *gomock.Controller
	recorder *MockAutomationServiceMockRecorder
}

// MockAutomationServiceMockRecorder is the mock recorder for MockAutomationService
type MockAutomationServiceMockRecorder struct {
	mock *MockAutomationService
}

// NewMockAutomationService creates a new mock instance
func NewMockAutomationService(ctrl *gomock.Controller) *MockAutomationService {
	mock := &MockAutomationService{ctrl: ctrl}
	mock.recorder = &MockAutomationServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockAutomationService) EXPECT() *MockAutomationServiceMockRecorder {
	return m.recorder
}

// Create mocks base method
func (m *MockAutomationService) Create(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, workspaceID, automation)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create
func (mr *MockAutomationServiceMockRecorder) Create(ctx, workspaceID, automation interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAutomationService)(nil).Create), ctx, workspaceID, automation)
}

// Get mocks base method
func (m *MockAutomationService) Get(ctx context.Context, workspaceID, automationID string) (*domain.Automation, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", ctx, workspaceID, automationID)
	ret0, _ := ret[0].(*domain.Automation)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get
func (mr *MockAutomationServiceMockRecorder) Get(ctx, workspaceID, automationID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockAutomationService)(nil).Get), ctx, workspaceID, automationID)
}

// List mocks base method
func (m *MockAutomationService) List(ctx context.Context, workspaceID string, filter domain.AutomationFilter) ([]*domain.Automation, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, workspaceID, filter)
	ret0, _ := ret[0].([]*domain.Automation)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// List indicates an expected call of List
func (mr *MockAutomationServiceMockRecorder) List(ctx, workspaceID, filter interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockAutomationService)(nil).List), ctx, workspaceID, filter)
}

// Update mocks base method
func (m *MockAutomationService) Update(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, workspaceID, automation)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update
func (mr *MockAutomationServiceMockRecorder) Update(ctx, workspaceID, automation interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockAutomationService)(nil).Update), ctx, workspaceID, automation)
}

// Delete mocks base method
func (m *MockAutomationService) Delete(ctx context.Context, workspaceID, automationID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, workspaceID, automationID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete
func (mr *MockAutomationServiceMockRecorder) Delete(ctx, workspaceID, automationID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockAutomationService)(nil).Delete), ctx, workspaceID, automationID)
}

// Activate mocks base method
func (m *MockAutomationService) Activate(ctx context.Context, workspaceID, automationID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Activate", ctx, workspaceID, automationID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Activate indicates an expected call of Activate
func (mr *MockAutomationServiceMockRecorder) Activate(ctx, workspaceID, automationID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Activate", reflect.TypeOf((*MockAutomationService)(nil).Activate), ctx, workspaceID, automationID)
}

// Pause mocks base method
func (m *MockAutomationService) Pause(ctx context.Context, workspaceID, automationID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Pause", ctx, workspaceID, automationID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Pause indicates an expected call of Pause
func (mr *MockAutomationServiceMockRecorder) Pause(ctx, workspaceID, automationID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Pause", reflect.TypeOf((*MockAutomationService)(nil).Pause), ctx, workspaceID, automationID)
}
