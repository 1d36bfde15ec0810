package repository

import (
	"context"

	"github.com/zots0127/locker/internal/domain/entities"
)

// GroupRepository persists the registry of known groups
type GroupRepository interface {
	// List returns groups in insertion order
	List(ctx context.Context) ([]entities.Group, error)

	// Get returns the group with the exact name
	Get(ctx context.Context, name string) (*entities.Group, error)

	// Create registers a new group and creates its directory
	Create(ctx context.Context, name string) (*entities.Group, error)

	// Delete removes the group's directory and its registry entry
	Delete(ctx context.Context, name string) error

	// FolderFor returns the directory a group with this name lives in
	FolderFor(name string) string
}
