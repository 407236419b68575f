package middleware

import (
	"net/http"
	"time"

	"orgmanager/internal/common"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// AuditMiddleware writes one audit record per state-changing request
type AuditMiddleware struct {
	logger zerolog.Logger
}

func NewAuditMiddleware(logger zerolog.Logger) *AuditMiddleware {
	return &AuditMiddleware{logger: logger.With().Str("component", "audit").Logger()}
}

// AuditRequest records who changed which organization and with what outcome.
// Reads are not audited.
func (m *AuditMiddleware) AuditRequest() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead || method == http.MethodOptions {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			event := m.logger.Info()
			if err != nil || status >= http.StatusBadRequest {
				event = m.logger.Warn()
			}
			if subject, ok := common.GetSubjectFromContext(c.Request().Context()); ok {
				event = event.Str("subject", subject)
			}
			for _, name := range []string{"id", "locationId", "employeeId"} {
				if v := c.Param(name); v != "" {
					event = event.Str(name, v)
				}
			}
			event.
				Str("action", method+" "+c.Path()).
				Int("status", status).
				Dur("took", time.Since(start)).
				Msg("audit")

			return err
		}
	}
}
