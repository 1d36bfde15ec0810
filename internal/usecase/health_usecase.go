package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// Checks whose failure takes the whole locker down. Anything else failing
// only degrades it: with the session store gone, listings and downloads
// are still served.
var criticalChecks = map[string]bool{
	entities.CheckStorage:   true,
	entities.CheckRegistry:  true,
	entities.CheckDiskSpace: true,
}

// HealthUseCase turns raw probe results into a service status
type HealthUseCase struct {
	probes  repository.HealthRepository
	started time.Time
	version string
	now     func() time.Time
}

// NewHealthUseCase creates a health use case reporting version
func NewHealthUseCase(probes repository.HealthRepository, version string) *HealthUseCase {
	return &HealthUseCase{
		probes:  probes,
		started: time.Now(),
		version: version,
		now:     time.Now,
	}
}

// GetHealth runs every probe and rolls the results up
func (h *HealthUseCase) GetHealth(ctx context.Context) (*entities.HealthCheck, error) {
	health, err := h.probes.CheckHealth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run health checks: %w", err)
	}

	health.Status = Rollup(health.Checks)
	health.Version = h.version
	health.Timestamp = h.now()
	health.Uptime = h.Uptime()
	return health, nil
}

// Rollup derives the overall status. A critical check that is down yields
// down; any other failure or partial result yields partial.
func Rollup(checks map[string]entities.CheckResult) entities.HealthStatus {
	status := entities.HealthStatusUp
	for name, check := range checks {
		switch check.Status {
		case entities.HealthStatusUp:
		case entities.HealthStatusDown:
			if criticalChecks[name] {
				return entities.HealthStatusDown
			}
			status = entities.HealthStatusPartial
		default:
			status = entities.HealthStatusPartial
		}
	}
	return status
}

// GetReadiness reports whether uploads can be accepted: the upload root
// must be writable and the registry readable.
func (h *HealthUseCase) GetReadiness(ctx context.Context) (bool, string) {
	if check := h.probes.CheckStorage(ctx); check.Status == entities.HealthStatusDown {
		return false, "Storage not ready: " + check.Message
	}
	if check := h.probes.CheckRegistry(ctx); check.Status == entities.HealthStatusDown {
		return false, "Registry not ready: " + check.Message
	}
	return true, "Service is ready"
}

// Uptime is the time since the use case was built
func (h *HealthUseCase) Uptime() time.Duration {
	return h.now().Sub(h.started)
}
