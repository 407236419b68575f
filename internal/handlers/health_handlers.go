package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"orgmanager/internal/caching"
	"orgmanager/internal/services"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db      Pinger
	cache   caching.CacheService
	storage services.MinioService
	bucket  string
	version string
	started time.Time
}

func NewHealthHandlers(db Pinger, cache caching.CacheService, storage services.MinioService, bucket, version string) *HealthHandlers {
	return &HealthHandlers{
		db:      db,
		cache:   cache,
		storage: storage,
		bucket:  bucket,
		version: version,
		started: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

func (h *HealthHandlers) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Liveness)
	e.GET("/health/ready", h.Readiness)
}

// Liveness reports that the process is serving requests
func (h *HealthHandlers) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, h.status("healthy"))
}

// Readiness checks every backing service. The database is required; cache and
// storage outages degrade the service without taking it out of rotation.
func (h *HealthHandlers) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	health := h.status("healthy")
	health.Services = make(map[string]string)

	statusCode := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.cache.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	} else {
		health.Services["redis"] = "healthy"
	}

	if err := h.checkStorage(ctx); err != nil {
		health.Services["storage"] = "unhealthy"
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
	} else {
		health.Services["storage"] = "healthy"
	}

	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	exists, err := h.storage.BucketExists(ctx, h.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("bucket %s does not exist", h.bucket)
	}
	return nil
}

func (h *HealthHandlers) status(status string) *HealthStatus {
	return &HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.started).Truncate(time.Second).String(),
		Version:   h.version,
	}
}
