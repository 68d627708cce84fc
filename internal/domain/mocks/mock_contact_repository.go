package mocks

import (
	context "context"
	reflect "reflect"

	domain "github.com/dripkit/dripkit/internal/domain"
	gomock "github.com/golang/mock/gomock"
)

// MockContactRepository is a mock of ContactRepository interface
type MockContactRepository struct {
	ctrl     *gomock.Controller
	recorder *MockContactRepositoryMockRecorder
}

// MockContactRepositoryMockRecorder is the mock recorder for MockContactRepository
type MockContactRepositoryMockRecorder struct {
	mock *MockContactRepository
}

// NewMockContactRepository creates a new mock instance
func NewMockContactRepository(ctrl *gomock.Controller) *MockContactRepository {
	mock := &MockContactRepository{ctrl: ctrl}
	mock.recorder = &MockContactRepositoryMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use
func (m *MockContactRepository) EXPECT() *MockContactRepositoryMockRecorder {
	return m.recorder
}

// GetByEmail mocks base method
func (m *MockContactRepository) GetByEmail(ctx context.Context, workspaceID, email string) (*domain.Contact, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "GetByEmail", ctx, workspaceID, email)
	ret0, _ := ret[0].(*domain.Contact)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// GetByEmail indicates an expected call of GetByEmail
func (mr *MockContactRepositoryMockRecorder) GetByEmail(ctx, workspaceID, email interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "GetByEmail", reflect.TypeOf((*MockContactRepository)(nil).GetByEmail), ctx, workspaceID, email)
}

// UpdateFields mocks base method
func (m *MockContactRepository) UpdateFields(ctx context.Context, workspaceID, email string, fields map[string]string) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "UpdateFields", ctx, workspaceID, email, fields)
	ret0, _ := ret[0].(error)
	return ret0
}

// UpdateFields indicates an expected call of UpdateFields
func (mr *MockContactRepositoryMockRecorder) UpdateFields(ctx, workspaceID, email, fields interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "UpdateFields", reflect.TypeOf((*MockContactRepository)(nil).UpdateFields), ctx, workspaceID, email, fields)
}

// AddTags mocks base method
func (m *MockContactRepository) AddTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "AddTags", ctx, workspaceID, email, tags)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// AddTags indicates an expected call of AddTags
func (mr *MockContactRepositoryMockRecorder) AddTags(ctx, workspaceID, email, tags interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "AddTags", reflect.TypeOf((*MockContactRepository)(nil).AddTags), ctx, workspaceID, email, tags)
}

// RemoveTags mocks base method
func (m *MockContactRepository) RemoveTags(ctx context.Context, workspaceID, email string, tags []string) ([]string, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RemoveTags", ctx, workspaceID, email, tags)
	ret0, _ := ret[0].([]string)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RemoveTags indicates an expected call of RemoveTags
func (mr *MockContactRepositoryMockRecorder) RemoveTags(ctx, workspaceID, email, tags interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveTags", reflect.TypeOf((*MockContactRepository)(nil).RemoveTags), ctx, workspaceID, email, tags)
}

// FindMatchingForTrigger mocks base method
func (m *MockContactRepository) FindMatchingForTrigger(ctx context.Context, workspaceID string, automation *domain.Automation, limit int) ([]*domain.Contact, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "FindMatchingForTrigger", ctx, workspaceID, automation, limit)
	ret0, _ := ret[0].([]*domain.Contact)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// FindMatchingForTrigger indicates an expected call of FindMatchingForTrigger
func (mr *MockContactRepositoryMockRecorder) FindMatchingForTrigger(ctx, workspaceID, automation, limit interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "FindMatchingForTrigger", reflect.TypeOf((*MockContactRepository)(nil).FindMatchingForTrigger), ctx, workspaceID, automation, limit)
}
