package services

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/MonkyMars/gecho"
)

var uptimeStart time.Time

func init() {
	uptimeStart = time.Now()
}

type serverHealthStatus struct {
	Uptime       float64   `json:"uptime"`        // in seconds
	CurrentTime  time.Time `json:"current_time"`  // server current time
	ServiceAlive bool      `json:"service_alive"` // always true if service is running
	RamStats     *RamStats `json:"ram_stats"`
}

type RamStats struct {
	TotalMB     uint64 `json:"total_mb"`
	UsedMB      uint64 `json:"used_mb"`
	FreeMB      uint64 `json:"free_mb"`
	UsedPercent uint64 `json:"used_percent"`
}

type dependencyHealthStatus struct {
	Connected      bool           `json:"connected"`
	LastChecked    time.Time      `json:"last_checked"`
	ResponseTimeMs int64          `json:"response_time_ms"`
	Stats          map[string]any `json:"stats,omitempty"`
}

var errCacheNotConfigured = errors.New("cache not configured")

// Pinger is anything the health checks can probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthService struct {
	logger *gecho.Logger
	db     Pinger
	cache  *CacheService
	status serverHealthStatus
}

func NewHealthService(logger *gecho.Logger, db Pinger, cache *CacheService) *HealthService {
	return &HealthService{
		logger: logger,
		db:     db,
		cache:  cache,
		status: serverHealthStatus{
			CurrentTime:  time.Now(),
			ServiceAlive: true,
			RamStats:     getRamStats(),
		},
	}
}

func getRamStats() *RamStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	totalMB := m.Sys / 1024 / 1024
	usedMB := m.Alloc / 1024 / 1024
	freeMB := totalMB - usedMB
	usedPercent := uint64(0)
	if totalMB > 0 {
		usedPercent = (usedMB * 100) / totalMB
	}

	return &RamStats{
		TotalMB:     totalMB,
		UsedMB:      usedMB,
		FreeMB:      freeMB,
		UsedPercent: usedPercent,
	}
}

func (hs *HealthService) GetServerHealthStatus() serverHealthStatus {
	hs.status.Uptime = time.Since(uptimeStart).Seconds()
	hs.status.CurrentTime = time.Now()
	hs.status.RamStats = getRamStats()
	return hs.status
}

func (hs *HealthService) GetDatabaseHealthStatus(ctx context.Context) (dependencyHealthStatus, error) {
	start := time.Now()
	err := hs.db.PingContext(ctx)

	status := dependencyHealthStatus{
		Connected:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		hs.logger.Error("Database health check failed", gecho.Field("error", err))
	}
	return status, err
}

func (hs *HealthService) GetCacheHealthStatus(ctx context.Context) (dependencyHealthStatus, error) {
	if hs.cache == nil {
		return dependencyHealthStatus{LastChecked: time.Now()}, errCacheNotConfigured
	}

	start := time.Now()
	err := hs.cache.Ping(ctx)

	status := dependencyHealthStatus{
		Connected:      err == nil,
		LastChecked:    time.Now(),
		ResponseTimeMs: time.Since(start).Milliseconds(),
		Stats:          hs.cache.GetConnectionStats(),
	}
	if err != nil {
		hs.logger.Error("Cache health check failed", gecho.Field("error", err))
	}
	return status, err
}
