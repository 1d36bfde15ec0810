package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zots0127/locker/internal/domain/entities"
)

// MockHealthRepository is a mock implementation of HealthRepository
type MockHealthRepository struct {
	mock.Mock
}

// CheckHealth mocks the CheckHealth method
func (m *MockHealthRepository) CheckHealth(ctx context.Context) (*entities.HealthCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.HealthCheck), args.Error(1)
}

// CheckStorage mocks the CheckStorage method
func (m *MockHealthRepository) CheckStorage(ctx context.Context) entities.CheckResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.CheckResult)
}

// CheckRegistry mocks the CheckRegistry method
func (m *MockHealthRepository) CheckRegistry(ctx context.Context) entities.CheckResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.CheckResult)
}

// CheckSessions mocks the CheckSessions method
func (m *MockHealthRepository) CheckSessions(ctx context.Context) entities.CheckResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.CheckResult)
}

// CheckDiskSpace mocks the CheckDiskSpace method
func (m *MockHealthRepository) CheckDiskSpace(ctx context.Context) entities.CheckResult {
	args := m.Called(ctx)
	return args.Get(0).(entities.CheckResult)
}
