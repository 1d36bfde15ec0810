package mocks

import (
	"context"
	"io"
	"os"

	"github.com/stretchr/testify/mock"

	"github.com/zots0127/locker/internal/domain/entities"
)

// MockFileRepository is a mock implementation of FileRepository
type MockFileRepository struct {
	mock.Mock
}

// Save mocks the Save method. The source is drained so callers see a
// fully consumed reader, as with a real store.
func (m *MockFileRepository) Save(ctx context.Context, group, dir string, src io.Reader, originalName string) (*entities.FileInfo, error) {
	io.Copy(io.Discard, src)
	args := m.Called(ctx, group, dir, originalName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FileInfo), args.Error(1)
}

// List mocks the List method
func (m *MockFileRepository) List(ctx context.Context, dir string) ([]entities.FileMeta, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FileMeta), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockFileRepository) Delete(ctx context.Context, dir, filename string) error {
	args := m.Called(ctx, dir, filename)
	return args.Error(0)
}

// Open mocks the Open method
func (m *MockFileRepository) Open(ctx context.Context, dir, filename string) (*os.File, os.FileInfo, error) {
	args := m.Called(ctx, dir, filename)
	var f *os.File
	if v := args.Get(0); v != nil {
		f = v.(*os.File)
	}
	var info os.FileInfo
	if v := args.Get(1); v != nil {
		info = v.(os.FileInfo)
	}
	return f, info, args.Error(2)
}

// MockMirror is a mock implementation of Mirror
type MockMirror struct {
	mock.Mock
}

// Put mocks the Put method
func (m *MockMirror) Put(ctx context.Context, key string, path string) error {
	args := m.Called(ctx, key, path)
	return args.Error(0)
}

// Delete mocks the Delete method
func (m *MockMirror) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// DeletePrefix mocks the DeletePrefix method
func (m *MockMirror) DeletePrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}
