package mocks

import (
	"context"
	"path/filepath"

	"github.com/stretchr/testify/mock"

	"github.com/zots0127/locker/internal/domain/entities"
)

// MockGroupRepository is a mock implementation of GroupRepository.
// FolderFor is not mocked; it joins Root and the name.
type MockGroupRepository struct {
	mock.Mock
	Root string
}

// List mocks the List method
func (m *MockGroupRepository) List(ctx context.Context) ([]entities.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Group), args.Error(1)
}

// Get mocks the Get method
func (m *MockGroupRepository) Get(ctx context.Context, name string) (*entities.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

// Create mocks the Create method
func (m *MockGroupRepository) Create(ctx context.Context, name string) (*entities.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Group), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockGroupRepository) Delete(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// FolderFor returns Root/name
func (m *MockGroupRepository) FolderFor(name string) string {
	return filepath.Join(m.Root, name)
}
