package mocks

import (
	context "context"
	sql "database/sql"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockAutomationRepository is a mock of AutomationRepository interface
type MockAutomationRepository struct {
	ctrl     *gomock.Controller
	recorder *MockAutomationRepositoryMockRecorder
}

// MockAutomationRepositoryMockRecorder is the mock recorder for MockAutomationRepository
type MockAutomationRepositoryMockRecorder struct {
	mock *MockAutomationRepository
}

// NewMockAutomationRepository creates a new mock instance
func NewMockAutomationRepository(ctrl *gomock.Controller) *MockAutomationRepository {
	mock := &MockAutomationRepository{ctrl: ctrl}
	mock.recorder = &MockAutomationRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockAutomationRepository) EXPECT() *MockAutomationRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method
func (m *MockAutomationRepository) Create(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, workspaceID, automation)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create
func (mr *MockAutomationRepositoryMockRecorder) Create(ctx, workspaceID, automation interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockAutomationRepository)(nil).Create), ctx, workspaceID, automation)
}

// GetByID mocks base method
func (m *MockAutomationRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Automation, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, workspaceID, id)
	ret0, _ := ret[0].(*domain.Automation)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID
func (mr *MockAutomationRepositoryMockRecorder) GetByID(ctx, workspaceID, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockAutomationRepository)(nil).GetByID), ctx, workspaceID, id)
}

// List mocks base method
func (m *MockAutomationRepository) List(ctx context.Context, workspaceID string, filter domain.AutomationFilter) ([]*domain.Automation, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, workspaceID, filter)
	ret0, _ := ret[0].([]*domain.Automation)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// List indicates an expected call of List
func (mr *MockAutomationRepositoryMockRecorder) List(ctx, workspaceID, filter interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockAutomationRepository)(nil).List), ctx, workspaceID, filter)
}

// Update mocks base method
func (m *MockAutomationRepository) Update(ctx context.Context, workspaceID string, automation *domain.Automation) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, workspaceID, automation)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update
func (mr *MockAutomationRepositoryMockRecorder) Update(ctx, workspaceID, automation interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockAutomationRepository)(nil).Update), ctx, workspaceID, automation)
}

// Delete mocks base method
func (m *MockAutomationRepository) Delete(ctx context.Context, workspaceID, id string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Delete", ctx, workspaceID, id)
	ret0, _ := ret[0].(error)
	return ret0
}

// Delete indicates an expected call of Delete
func (mr *MockAutomationRepositoryMockRecorder) Delete(ctx, workspaceID, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Delete", reflect.TypeOf((*MockAutomationRepository)(nil).Delete), ctx, workspaceID, id)
}

// ListActive mocks base method
func (m *MockAutomationRepository) ListActive(ctx context.Context) ([]*domain.Automation, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListActive", ctx)
	ret0, _ := ret[0].([]*domain.Automation)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListActive indicates an expected call of ListActive
func (mr *MockAutomationRepositoryMockRecorder) ListActive(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListActive", reflect.TypeOf((*MockAutomationRepository)(nil).ListActive), ctx)
}

// IncrementStat mocks base method
func (m *MockAutomationRepository) IncrementStat(ctx context.Context, workspaceID, automationID, statName string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IncrementStat", ctx, workspaceID, automationID, statName)
	ret0, _ := ret[0].(error)
	return ret0
}

// IncrementStat indicates an expected call of IncrementStat
func (mr *MockAutomationRepositoryMockRecorder) IncrementStat(ctx, workspaceID, automationID, statName interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IncrementStat", reflect.TypeOf((*MockAutomationRepository)(nil).IncrementStat), ctx, workspaceID, automationID, statName)
}

// WithTransaction mocks base method
func (m *MockAutomationRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "WithTransaction", ctx, fn)
	ret0, _ := ret[0].(error)
	return ret0
}

// WithTransaction indicates an expected call of WithTransaction
func (mr *MockAutomationRepositoryMockRecorder) WithTransaction(ctx, fn interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "WithTransaction", reflect.TypeOf((*MockAutomationRepository)(nil).WithTransaction), ctx, fn)
}
