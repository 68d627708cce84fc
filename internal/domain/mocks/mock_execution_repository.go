package mocks

import (
	context "context"
	sql "database/sql"
	reflect "reflect"
	time "time"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockExecutionRepository is a mock of ExecutionRepository interface
type MockExecutionRepository struct {
	ctrl     *gomock.Controller
	recorder *MockExecutionRepositoryMockRecorder
}

// MockExecutionRepositoryMockRecorder is the mock recorder for MockExecutionRepository
type MockExecutionRepositoryMockRecorder struct {
	mock *MockExecutionRepository
}

// NewMockExecutionRepository creates a new mock instance
func NewMockExecutionRepository(ctrl *gomock.Controller) *MockExecutionRepository {
	mock := &MockExecutionRepository{ctrl: ctrl}
	mock.recorder = &MockExecutionRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockExecutionRepository) EXPECT() *MockExecutionRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method
func (m *MockExecutionRepository) Create(ctx context.Context, workspaceID string, execution *domain.Execution) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, workspaceID, execution)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create
func (mr *MockExecutionRepositoryMockRecorder) Create(ctx, workspaceID, execution interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockExecutionRepository)(nil).Create), ctx, workspaceID, execution)
}

// CreateTx mocks base method
func (m *MockExecutionRepository) CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, execution *domain.Execution) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateTx", ctx, tx, workspaceID, execution)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateTx indicates an expected call of CreateTx
func (mr *MockExecutionRepositoryMockRecorder) CreateTx(ctx, tx, workspaceID, execution interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateTx", reflect.TypeOf((*MockExecutionRepository)(nil).CreateTx), ctx, tx, workspaceID, execution)
}

// GetByID mocks base method
func (m *MockExecutionRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Execution, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, workspaceID, id)
	ret0, _ := ret[0].(*domain.Execution)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID
func (mr *MockExecutionRepositoryMockRecorder) GetByID(ctx, workspaceID, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockExecutionRepository)(nil).GetByID), ctx, workspaceID, id)
}

// ListByEnrollment mocks base method
func (m *MockExecutionRepository) ListByEnrollment(ctx context.Context, workspaceID, enrollmentID string) ([]*domain.Execution, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ListByEnrollment", ctx, workspaceID, enrollmentID)
	ret0, _ := ret[0].([]*domain.Execution)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ListByEnrollment indicates an expected call of ListByEnrollment
func (mr *MockExecutionRepositoryMockRecorder) ListByEnrollment(ctx, workspaceID, enrollmentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ListByEnrollment", reflect.TypeOf((*MockExecutionRepository)(nil).ListByEnrollment), ctx, workspaceID, enrollmentID)
}

// Update mocks base method
func (m *MockExecutionRepository) Update(ctx context.Context, workspaceID string, execution *domain.Execution) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, workspaceID, execution)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update
func (mr *MockExecutionRepositoryMockRecorder) Update(ctx, workspaceID, execution interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockExecutionRepository)(nil).Update), ctx, workspaceID, execution)
}

// ClaimDue mocks base method
func (m *MockExecutionRepository) ClaimDue(ctx context.Context, before time.Time, limit int) ([]*domain.DueExecution, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ClaimDue", ctx, before, limit)
	ret0, _ := ret[0].([]*domain.DueExecution)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ClaimDue indicates an expected call of ClaimDue
func (mr *MockExecutionRepositoryMockRecorder) ClaimDue(ctx, before, limit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ClaimDue", reflect.TypeOf((*MockExecutionRepository)(nil).ClaimDue), ctx, before, limit)
}

// Claim mocks base method
func (m *MockExecutionRepository) Claim(ctx context.Context, workspaceID, id string) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Claim", ctx, workspaceID, id)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Claim indicates an expected call of Claim
func (mr *MockExecutionRepositoryMockRecorder) Claim(ctx, workspaceID, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Claim", reflect.TypeOf((*MockExecutionRepository)(nil).Claim), ctx, workspaceID, id)
}

// CancelPendingForEnrollment mocks base method
func (m *MockExecutionRepository) CancelPendingForEnrollment(ctx context.Context, workspaceID, enrollmentID string) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CancelPendingForEnrollment", ctx, workspaceID, enrollmentID)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// CancelPendingForEnrollment indicates an expected call of CancelPendingForEnrollment
func (mr *MockExecutionRepositoryMockRecorder) CancelPendingForEnrollment(ctx, workspaceID, enrollmentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CancelPendingForEnrollment", reflect.TypeOf((*MockExecutionRepository)(nil).CancelPendingForEnrollment), ctx, workspaceID, enrollmentID)
}

// ReapTerminal mocks base method
func (m *MockExecutionRepository) ReapTerminal(ctx context.Context, completedBefore, failedBefore time.Time) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReapTerminal", ctx, completedBefore, failedBefore)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ReapTerminal indicates an expected call of ReapTerminal
func (mr *MockExecutionRepositoryMockRecorder) ReapTerminal(ctx, completedBefore, failedBefore interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReapTerminal", reflect.TypeOf((*MockExecutionRepository)(nil).ReapTerminal), ctx, completedBefore, failedBefore)
}

// ResetStale mocks base method
func (m *MockExecutionRepository) ResetStale(ctx context.Context, olderThan time.Time) (int64, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ResetStale", ctx, olderThan)
	ret0, _ := ret[0].(int64)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// ResetStale indicates an expected call of ResetStale
func (mr *MockExecutionRepositoryMockRecorder) ResetStale(ctx, olderThan interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ResetStale", reflect.TypeOf((*MockExecutionRepository)(nil).ResetStale), ctx, olderThan)
}
