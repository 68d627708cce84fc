package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockEnrollmentService is a mock of EnrollmentService interface
type MockEnrollmentService struct {
	ctrl     *gomock.Controller
	recorder *MockEnrollmentServiceMockRecorder
}

// MockEnrollmentServiceMockRecorder is the mock recorder for MockEnrollmentService
type MockEnrollmentServiceMockRecorder struct {
	mock *MockEnrollmentService
}

// NewMockEnrollmentService creates a new mock instance
func NewMockEnrollmentService(ctrl *gomock.Controller) *MockEnrollmentService {
	mock := &MockEnrollmentService{ctrl: ctrl}
	mock.recorder = &MockEnrollmentServiceMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockEnrollmentService) EXPECT() *MockEnrollmentServiceMockRecorder {
	return m.recorder
}

// Enroll mocks base method
func (m *MockEnrollmentService) Enroll(ctx context.Context, workspaceID, automationID, contactEmail string, triggerContext map[string]any) (*domain.Enrollment, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Enroll", ctx, workspaceID, automationID, contactEmail, triggerContext)
	ret0, _ := ret[0].(*domain.Enrollment)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Enroll indicates an expected call of Enroll
func (mr *MockEnrollmentServiceMockRecorder) Enroll(ctx, workspaceID, automationID, contactEmail, triggerContext interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Enroll", reflect.TypeOf((*MockEnrollmentService)(nil).Enroll), ctx, workspaceID, automationID, contactEmail, triggerContext)
}

// Cancel mocks base method
func (m *MockEnrollmentService) Cancel(ctx context.Context, workspaceID, enrollmentID, reason string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Cancel", ctx, workspaceID, enrollmentID, reason)
	ret0, _ := ret[0].(error)
	return ret0
}

// Cancel indicates an expected call of Cancel
func (mr *MockEnrollmentServiceMockRecorder) Cancel(ctx, workspaceID, enrollmentID, reason interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cancel", reflect.TypeOf((*MockEnrollmentService)(nil).Cancel), ctx, workspaceID, enrollmentID, reason)
}

// Pause mocks base method
func (m *MockEnrollmentService) Pause(ctx context.Context, workspaceID, enrollmentID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Pause", ctx, workspaceID, enrollmentID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Pause indicates an expected call of Pause
func (mr *MockEnrollmentServiceMockRecorder) Pause(ctx, workspaceID, enrollmentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Pause", reflect.TypeOf((*MockEnrollmentService)(nil).Pause), ctx, workspaceID, enrollmentID)
}

// Resume mocks base method
func (m *MockEnrollmentService) Resume(ctx context.Context, workspaceID, enrollmentID string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Resume", ctx, workspaceID, enrollmentID)
	ret0, _ := ret[0].(error)
	return ret0
}

// Resume indicates an expected call of Resume
func (mr *MockEnrollmentServiceMockRecorder) Resume(ctx, workspaceID, enrollmentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Resume", reflect.TypeOf((*MockEnrollmentService)(nil).Resume), ctx, workspaceID, enrollmentID)
}

// Complete mocks base method
func (m *MockEnrollmentService) Complete(ctx context.Context, workspaceID, enrollmentID, reason string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Complete", ctx, workspaceID, enrollmentID, reason)
	ret0, _ := ret[0].(error)
	return ret0
}

// Complete indicates an expected call of Complete
func (mr *MockEnrollmentServiceMockRecorder) Complete(ctx, workspaceID, enrollmentID, reason interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Complete", reflect.TypeOf((*MockEnrollmentService)(nil).Complete), ctx, workspaceID, enrollmentID, reason)
}

// History mocks base method
func (m *MockEnrollmentService) History(ctx context.Context, workspaceID, enrollmentID string) ([]*domain.Execution, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "History", ctx, workspaceID, enrollmentID)
	ret0, _ := ret[0].([]*domain.Execution)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// History indicates an expected call of History
func (mr *MockEnrollmentServiceMockRecorder) History(ctx, workspaceID, enrollmentID interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "History", reflect.TypeOf((*MockEnrollmentService)(nil).History), ctx, workspaceID, enrollmentID)
}
