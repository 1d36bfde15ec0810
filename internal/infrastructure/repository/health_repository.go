package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
)

// Pinger is anything that can report whether it is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// GroupLister reads the group registry
type GroupLister interface {
	List(ctx context.Context) ([]entities.Group, error)
}

// HealthRepositoryImpl implements HealthRepository
type HealthRepositoryImpl struct {
	uploadRoot string
	registry   GroupLister
	sessions   Pinger
}

// NewHealthRepository creates a new health repository
func NewHealthRepository(uploadRoot string, registry GroupLister, sessions Pinger) repository.HealthRepository {
	return &HealthRepositoryImpl{
		uploadRoot: uploadRoot,
		registry:   registry,
		sessions:   sessions,
	}
}

// CheckHealth runs every probe and collects process info. The overall
// status is left for the caller to decide.
func (h *HealthRepositoryImpl) CheckHealth(ctx context.Context) (*entities.HealthCheck, error) {
	return &entities.HealthCheck{
		Checks: map[string]entities.CheckResult{
			entities.CheckStorage:   h.CheckStorage(ctx),
			entities.CheckRegistry:  h.CheckRegistry(ctx),
			entities.CheckSessions:  h.CheckSessions(ctx),
			entities.CheckDiskSpace: h.CheckDiskSpace(ctx),
		},
		SystemInfo: h.systemInfo(),
	}, nil
}

// CheckStorage verifies the upload root is a writable directory
func (h *HealthRepositoryImpl) CheckStorage(ctx context.Context) entities.CheckResult {
	info, err := os.Stat(h.uploadRoot)
	if err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Upload root not accessible: %v", err),
		}
	}
	if !info.IsDir() {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: "Upload root is not a directory",
		}
	}

	// dot-prefixed names are hidden from listings and never valid group names
	probe := filepath.Join(h.uploadRoot, ".health_check")
	file, err := os.Create(probe)
	if err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Cannot write to upload root: %v", err),
		}
	}
	file.Close()
	os.Remove(probe)

	return entities.CheckResult{
		Status:  entities.HealthStatusUp,
		Message: "Storage is healthy",
		Details: map[string]interface{}{
			"path":     h.uploadRoot,
			"writable": true,
		},
	}
}

// CheckRegistry verifies the group document can be read and parsed
func (h *HealthRepositoryImpl) CheckRegistry(ctx context.Context) entities.CheckResult {
	groups, err := h.registry.List(ctx)
	if err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Registry unreadable: %v", err),
		}
	}
	return entities.CheckResult{
		Status:  entities.HealthStatusUp,
		Message: "Registry is healthy",
		Details: map[string]interface{}{"groups": len(groups)},
	}
}

// CheckSessions verifies the session store answers
func (h *HealthRepositoryImpl) CheckSessions(ctx context.Context) entities.CheckResult {
	if err := h.sessions.Ping(ctx); err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Session store unavailable: %v", err),
		}
	}
	return entities.CheckResult{Status: entities.HealthStatusUp, Message: "Session store is healthy"}
}

// CheckDiskSpace checks available disk space
func (h *HealthRepositoryImpl) CheckDiskSpace(ctx context.Context) entities.CheckResult {
	total, available, err := diskSpace(h.uploadRoot)
	if err != nil {
		return entities.CheckResult{
			Status:  entities.HealthStatusDown,
			Message: fmt.Sprintf("Failed to check disk space: %v", err),
		}
	}

	used := total - available
	usagePercent := 0.0
	if total > 0 {
		usagePercent = float64(used) / float64(total) * 100
	}

	status := entities.HealthStatusUp
	message := "Disk space is sufficient"
	if usagePercent > 95 {
		status = entities.HealthStatusDown
		message = "Critical: Disk space is critically low"
	} else if usagePercent > 85 {
		status = entities.HealthStatusPartial
		message = "Warning: Disk space is running low"
	}

	return entities.CheckResult{
		Status:  status,
		Message: message,
		Details: map[string]interface{}{
			"total_bytes":     total,
			"available_bytes": available,
			"usage_percent":   usagePercent,
		},
	}
}

func (h *HealthRepositoryImpl) systemInfo() entities.SystemInfo {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	info := entities.SystemInfo{
		HeapAlloc:  int64(memStats.HeapAlloc),
		GoRoutines: runtime.NumGoroutine(),
	}
	if total, available, err := diskSpace(h.uploadRoot); err == nil && total > 0 {
		info.TotalDiskSpace = int64(total)
		info.AvailableDiskSpace = int64(available)
		info.DiskUsagePercent = float64(total-available) / float64(total) * 100
	}
	return info
}

func diskSpace(path string) (total, available uint64, err error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	return stat.Blocks * uint64(stat.Bsize), stat.Bavail * uint64(stat.Bsize), nil
}
