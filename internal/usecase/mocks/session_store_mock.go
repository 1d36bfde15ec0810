package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zots0127/locker/internal/domain/entities"
)

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

// Save mocks the Save method
func (m *MockSessionStore) Save(ctx context.Context, session *entities.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// Get mocks the Get method
func (m *MockSessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockSessionStore) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// Ping mocks the Ping method
func (m *MockSessionStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks the Close method
func (m *MockSessionStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
