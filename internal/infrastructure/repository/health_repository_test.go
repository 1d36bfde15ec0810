package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/locker/internal/domain/entities"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type listFunc func(ctx context.Context) ([]entities.Group, error)

func (f listFunc) List(ctx context.Context) ([]entities.Group, error) { return f(ctx) }

var (
	ok      = pingFunc(func(context.Context) error { return nil })
	noGroup = listFunc(func(context.Context) ([]entities.Group, error) { return nil, nil })
)

func TestHealthRepository_CheckStorage(t *testing.T) {
	ctx := context.Background()

	repo := NewHealthRepository(t.TempDir(), noGroup, ok)
	assert.Equal(t, entities.HealthStatusUp, repo.CheckStorage(ctx).Status)

	missing := NewHealthRepository(filepath.Join(t.TempDir(), "missing"), noGroup, ok)
	assert.Equal(t, entities.HealthStatusDown, missing.CheckStorage(ctx).Status)
}

func TestHealthRepository_CheckRegistryCountsGroups(t *testing.T) {
	ctx := context.Background()
	two := listFunc(func(context.Context) ([]entities.Group, error) {
		return []entities.Group{{Name: "cats"}, {Name: "dogs"}}, nil
	})

	check := NewHealthRepository(t.TempDir(), two, ok).CheckRegistry(ctx)
	assert.Equal(t, entities.HealthStatusUp, check.Status)
	assert.Equal(t, 2, check.Details["groups"])

	corrupt := listFunc(func(context.Context) ([]entities.Group, error) {
		return nil, errors.New("unexpected end of JSON input")
	})
	check = NewHealthRepository(t.TempDir(), corrupt, ok).CheckRegistry(ctx)
	assert.Equal(t, entities.HealthStatusDown, check.Status)
	assert.Contains(t, check.Message, "unexpected end of JSON input")
}

func TestHealthRepository_CheckHealthReturnsRawChecks(t *testing.T) {
	ctx := context.Background()
	broken := pingFunc(func(context.Context) error { return errors.New("boom") })

	health, err := NewHealthRepository(t.TempDir(), noGroup, broken).CheckHealth(ctx)
	require.NoError(t, err)

	assert.Empty(t, health.Status)
	assert.Len(t, health.Checks, 4)
	assert.Equal(t, entities.HealthStatusUp, health.Checks[entities.CheckStorage].Status)
	assert.Equal(t, entities.HealthStatusUp, health.Checks[entities.CheckRegistry].Status)
	assert.Equal(t, entities.HealthStatusDown, health.Checks[entities.CheckSessions].Status)
	assert.Contains(t, health.Checks, entities.CheckDiskSpace)
	assert.Greater(t, health.SystemInfo.GoRoutines, 0)
}
