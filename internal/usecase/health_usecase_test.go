package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/usecase"
	"github.com/zots0127/locker/internal/usecase/mocks"
)

func checks(storage, registry, sessions, disk entities.HealthStatus) map[string]entities.CheckResult {
	return map[string]entities.CheckResult{
		entities.CheckStorage:   {Status: storage},
		entities.CheckRegistry:  {Status: registry},
		entities.CheckSessions:  {Status: sessions},
		entities.CheckDiskSpace: {Status: disk},
	}
}

func TestRollup(t *testing.T) {
	up, down, partial := entities.HealthStatusUp, entities.HealthStatusDown, entities.HealthStatusPartial

	tests := []struct {
		name   string
		checks map[string]entities.CheckResult
		want   entities.HealthStatus
	}{
		{name: "all up", checks: checks(up, up, up, up), want: up},
		{name: "registry down", checks: checks(up, down, up, up), want: down},
		{name: "storage down", checks: checks(down, up, up, up), want: down},
		{name: "disk full", checks: checks(up, up, up, down), want: down},
		{name: "session store down only degrades", checks: checks(up, up, down, up), want: partial},
		{name: "low disk degrades", checks: checks(up, up, up, partial), want: partial},
		{name: "critical down wins over partial", checks: checks(up, down, down, partial), want: down},
		{name: "no checks", checks: nil, want: up},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, usecase.Rollup(tt.checks))
		})
	}
}

func TestHealthUseCase_GetHealth(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(mocks.MockHealthRepository)
	mockRepo.On("CheckHealth", ctx).Return(&entities.HealthCheck{
		Checks: checks(entities.HealthStatusUp, entities.HealthStatusUp, entities.HealthStatusDown, entities.HealthStatusUp),
	}, nil)

	health, err := usecase.NewHealthUseCase(mockRepo, "1.0.0").GetHealth(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.HealthStatusPartial, health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.False(t, health.Timestamp.IsZero())

	mockRepo.AssertExpectations(t)
}

func TestHealthUseCase_GetHealthError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(mocks.MockHealthRepository)
	mockRepo.On("CheckHealth", ctx).Return(nil, errors.New("boom"))

	_, err := usecase.NewHealthUseCase(mockRepo, "1.0.0").GetHealth(ctx)
	assert.ErrorContains(t, err, "boom")
}

func TestHealthUseCase_GetReadiness(t *testing.T) {
	ctx := context.Background()
	upCheck := entities.CheckResult{Status: entities.HealthStatusUp}

	tests := []struct {
		name      string
		setupMock func(*mocks.MockHealthRepository)
		ready     bool
		message   string
	}{
		{
			name: "storage and registry usable",
			setupMock: func(m *mocks.MockHealthRepository) {
				m.On("CheckStorage", ctx).Return(upCheck)
				m.On("CheckRegistry", ctx).Return(upCheck)
			},
			ready:   true,
			message: "Service is ready",
		},
		{
			name: "upload root missing",
			setupMock: func(m *mocks.MockHealthRepository) {
				m.On("CheckStorage", ctx).Return(entities.CheckResult{Status: entities.HealthStatusDown, Message: "no such directory"})
			},
			message: "Storage not ready: no such directory",
		},
		{
			name: "registry corrupt",
			setupMock: func(m *mocks.MockHealthRepository) {
				m.On("CheckStorage", ctx).Return(upCheck)
				m.On("CheckRegistry", ctx).Return(entities.CheckResult{Status: entities.HealthStatusDown, Message: "bad json"})
			},
			message: "Registry not ready: bad json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(mocks.MockHealthRepository)
			tt.setupMock(mockRepo)

			ready, msg := usecase.NewHealthUseCase(mockRepo, "1.0.0").GetReadiness(ctx)
			assert.Equal(t, tt.ready, ready)
			assert.Equal(t, tt.message, msg)

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestHealthUseCase_Uptime(t *testing.T) {
	uc := usecase.NewHealthUseCase(new(mocks.MockHealthRepository), "1.0.0")
	assert.GreaterOrEqual(t, uc.Uptime().Nanoseconds(), int64(0))
}
