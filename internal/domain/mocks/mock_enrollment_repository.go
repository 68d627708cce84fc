package mocks

import (
	context "context"
	sql "database/sql"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockEnrollmentRepository is a mock of EnrollmentRepository interface
type MockEnrollmentRepository struct {
	ctrl     *gomock.Controller
	recorder *MockEnrollmentRepositoryMockRecorder
}

// MockEnrollmentRepositoryMockRecorder is the mock recorder for MockEnrollmentRepository
type MockEnrollmentRepositoryMockRecorder struct {
	mock *MockEnrollmentRepository
}

// NewMockEnrollmentRepository creates a new mock instance
func NewMockEnrollmentRepository(ctrl *gomock.Controller) *MockEnrollmentRepository {
	mock := &MockEnrollmentRepository{ctrl: ctrl}
	mock.recorder = &MockEnrollmentRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockEnrollmentRepository) EXPECT() *MockEnrollmentRepositoryMockRecorder {
	return m.recorder
}

// Create mocks base method
func (m *MockEnrollmentRepository) Create(ctx context.Context, workspaceID string, enrollment *domain.Enrollment) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Create", ctx, workspaceID, enrollment)
	ret0, _ := ret[0].(error)
	return ret0
}

// Create indicates an expected call of Create
func (mr *MockEnrollmentRepositoryMockRecorder) Create(ctx, workspaceID, enrollment interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Create", reflect.TypeOf((*MockEnrollmentRepository)(nil).Create), ctx, workspaceID, enrollment)
}

// CreateTx mocks base method
func (m *MockEnrollmentRepository) CreateTx(ctx context.Context, tx *sql.Tx, workspaceID string, enrollment *domain.Enrollment) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateTx", ctx, tx, workspaceID, enrollment)
	ret0, _ := ret[0].(error)
	return ret0
}

// CreateTx indicates an expected call of CreateTx
func (mr *MockEnrollmentRepositoryMockRecorder) CreateTx(ctx, tx, workspaceID, enrollment interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateTx", reflect.TypeOf((*MockEnrollmentRepository)(nil).CreateTx), ctx, tx, workspaceID, enrollment)
}

// GetByID mocks base method
func (m *MockEnrollmentRepository) GetByID(ctx context.Context, workspaceID, id string) (*domain.Enrollment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByID", ctx, workspaceID, id)
	ret0, _ := ret[0].(*domain.Enrollment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByID indicates an expected call of GetByID
func (mr *MockEnrollmentRepositoryMockRecorder) GetByID(ctx, workspaceID, id interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByID", reflect.TypeOf((*MockEnrollmentRepository)(nil).GetByID), ctx, workspaceID, id)
}

// GetByAutomationAndEmail mocks base method
func (m *MockEnrollmentRepository) GetByAutomationAndEmail(ctx context.Context, workspaceID, automationID, email string) (*domain.Enrollment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByAutomationAndEmail", ctx, workspaceID, automationID, email)
	ret0, _ := ret[0].(*domain.Enrollment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByAutomationAndEmail indicates an expected call of GetByAutomationAndEmail
func (mr *MockEnrollmentRepositoryMockRecorder) GetByAutomationAndEmail(ctx, workspaceID, automationID, email interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByAutomationAndEmail", reflect.TypeOf((*MockEnrollmentRepository)(nil).GetByAutomationAndEmail), ctx, workspaceID, automationID, email)
}

// List mocks base method
func (m *MockEnrollmentRepository) List(ctx context.Context, workspaceID string, filter domain.EnrollmentFilter) ([]*domain.Enrollment, int, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "List", ctx, workspaceID, filter)
	ret0, _ := ret[0].([]*domain.Enrollment)
	ret1, _ := ret[1].(int)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// List indicates an expected call of List
func (mr *MockEnrollmentRepositoryMockRecorder) List(ctx, workspaceID, filter interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "List", reflect.TypeOf((*MockEnrollmentRepository)(nil).List), ctx, workspaceID, filter)
}

// Update mocks base method
func (m *MockEnrollmentRepository) Update(ctx context.Context, workspaceID string, enrollment *domain.Enrollment) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Update", ctx, workspaceID, enrollment)
	ret0, _ := ret[0].(error)
	return ret0
}

// Update indicates an expected call of Update
func (mr *MockEnrollmentRepositoryMockRecorder) Update(ctx, workspaceID, enrollment interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Update", reflect.TypeOf((*MockEnrollmentRepository)(nil).Update), ctx, workspaceID, enrollment)
}
