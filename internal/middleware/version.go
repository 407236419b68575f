package middleware

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
)

// APIVersion represents API version information
type APIVersion struct {
	Version    string     `json:"version"`
	Status     string     `json:"status"` // "active", "deprecated", "sunset"
	SunsetDate *time.Time `json:"sunset_date,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// VersionMiddleware provides API versioning functionality
type VersionMiddleware struct {
	supportedVersions map[string]APIVersion
	defaultVersion    string
}

func NewVersionMiddleware() *VersionMiddleware {
	return &VersionMiddleware{
		supportedVersions: map[string]APIVersion{
			"v1": {
				Version: "v1",
				Status:  "active",
				Message: "Current stable API version",
			},
		},
		defaultVersion: "v1",
	}
}

// VersionHeader adds version information to response headers
func (vm *VersionMiddleware) VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("X-API-Version", version)

			if ver, exists := vm.supportedVersions[version]; exists {
				if ver.Status == "deprecated" && ver.SunsetDate != nil {
					h.Set("X-API-Deprecated", "true")
					h.Set("X-API-Sunset", ver.SunsetDate.Format(time.RFC3339))
					h.Set("Warning", fmt.Sprintf("299 orgmanager \"This API version is deprecated and will be removed on %s\"",
						ver.SunsetDate.Format("2006-01-02")))
				}
				if ver.Message != "" {
					h.Set("X-API-Message", ver.Message)
				}
			}

			return next(c)
		}
	}
}

// VersionRoute creates a version-specific route group
func (vm *VersionMiddleware) VersionRoute(e *echo.Echo, version string, m ...echo.MiddlewareFunc) *echo.Group {
	return e.Group("/"+version, append([]echo.MiddlewareFunc{vm.VersionHeader(version)}, m...)...)
}

func (vm *VersionMiddleware) GetCurrentVersion() string {
	return vm.defaultVersion
}

// AddVersion adds or replaces an API version
func (vm *VersionMiddleware) AddVersion(version string, status string, message string, sunsetDate *time.Time) {
	vm.supportedVersions[version] = APIVersion{
		Version:    version,
		Status:     status,
		SunsetDate: sunsetDate,
		Message:    message,
	}
}
