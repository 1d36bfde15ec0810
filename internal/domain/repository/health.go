package repository

import (
	"context"

	"github.com/zots0127/locker/internal/domain/entities"
)

// HealthRepository defines the interface for health check operations
type HealthRepository interface {
	// CheckHealth runs every check; Status is left unset
	CheckHealth(ctx context.Context) (*entities.HealthCheck, error)

	// CheckStorage verifies the upload root is a writable directory
	CheckStorage(ctx context.Context) entities.CheckResult

	// CheckRegistry verifies the group registry can be read
	CheckRegistry(ctx context.Context) entities.CheckResult

	// CheckSessions verifies the session store answers
	CheckSessions(ctx context.Context) entities.CheckResult

	// CheckDiskSpace checks available disk space
	CheckDiskSpace(ctx context.Context) entities.CheckResult
}
