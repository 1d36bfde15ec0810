package repository

import (
	"context"
	"io"
	"os"

	"github.com/zots0127/locker/internal/domain/entities"
)

// FileRepository stores files inside group directories
type FileRepository interface {
	// Save writes src under the next free sequential name of the group
	Save(ctx context.Context, group, dir string, src io.Reader, originalName string) (*entities.FileInfo, error)

	// List returns the regular files of dir, newest first
	List(ctx context.Context, dir string) ([]entities.FileMeta, error)

	// Delete removes a single file
	Delete(ctx context.Context, dir, filename string) error

	// Open opens a file for serving; the caller closes it
	Open(ctx context.Context, dir, filename string) (*os.File, os.FileInfo, error)
}

// Mirror replicates stored files to secondary storage
type Mirror interface {
	Put(ctx context.Context, key string, path string) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
}
