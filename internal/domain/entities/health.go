package entities

import "time"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	HealthStatusUp      HealthStatus = "up"
	HealthStatusDown    HealthStatus = "down"
	HealthStatusPartial HealthStatus = "partial"
)

// Names of the individual checks
const (
	CheckStorage   = "storage"
	CheckRegistry  = "registry"
	CheckSessions  = "sessions"
	CheckDiskSpace = "disk_space"
)

// HealthCheck represents a health check result
type HealthCheck struct {
	Status     HealthStatus           `json:"status"`
	Version    string                 `json:"version"`
	Timestamp  time.Time              `json:"timestamp"`
	Uptime     time.Duration          `json:"uptime"`
	Checks     map[string]CheckResult `json:"checks"`
	SystemInfo SystemInfo             `json:"system_info"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus           `json:"status"`
	Message string                 `json:"message,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemInfo contains process and disk information
type SystemInfo struct {
	TotalDiskSpace     int64   `json:"total_disk_space"`
	AvailableDiskSpace int64   `json:"available_disk_space"`
	DiskUsagePercent   float64 `json:"disk_usage_percent"`
	HeapAlloc          int64   `json:"heap_alloc"`
	GoRoutines         int     `json:"go_routines"`
}
