package handlers

import (
	"context"
	"errors"
	"net/http"

	"orgmanager/internal/common"
	"orgmanager/internal/domain"
	"orgmanager/internal/repositories"
	"orgmanager/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// OrganizationHandlers exposes the organization aggregate over HTTP
type OrganizationHandlers struct {
	service services.OrganizationService
	logger  zerolog.Logger
}

func NewOrganizationHandlers(service services.OrganizationService, logger zerolog.Logger) *OrganizationHandlers {
	return &OrganizationHandlers{
		service: service,
		logger:  logger.With().Str("component", "organization_handlers").Logger(),
	}
}

// RegisterRoutes mounts the handlers on g, normally the /v1 group.
func (h *OrganizationHandlers) RegisterRoutes(g *echo.Group) {
	orgs := g.Group("/organizations")
	orgs.POST("", h.CreateOrganization)
	orgs.GET("", h.ListOrganizations)
	orgs.GET("/:id", h.GetOrganization)
	orgs.POST("/:id/activate", h.ActivateOrganization)
	orgs.POST("/:id/archive", h.ArchiveOrganization)
	orgs.GET("/:id/archive", h.GetArchiveDownloadURL)

	orgs.POST("/:id/subscription/cancel", h.CancelSubscription)
	orgs.POST("/:id/subscription/expire", h.ExpireSubscription)
	orgs.POST("/:id/subscription/activate", h.ActivateSubscription)

	orgs.POST("/:id/locations", h.AddLocation)
	orgs.PUT("/:id/locations/:locationId", h.UpdateLocation)
	orgs.POST("/:id/locations/:locationId/activate", h.ActivateLocation)
	orgs.POST("/:id/locations/:locationId/archive", h.ArchiveLocation)

	orgs.POST("/:id/employees", h.AddEmployee)
	orgs.PUT("/:id/employees/:employeeId/locations/:locationId", h.AssignEmployee)
	orgs.POST("/:id/employees/:employeeId/invite", h.InviteEmployee)
	orgs.POST("/:id/employees/:employeeId/activate", h.ActivateEmployee)
	orgs.POST("/:id/employees/:employeeId/archive", h.ArchiveEmployee)
}

// CreateOrganization handles POST /organizations
func (h *OrganizationHandlers) CreateOrganization(c echo.Context) error {
	var req services.CreateOrganizationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	state, err := h.service.Create(c.Request().Context(), &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, state)
}

// ListOrganizations handles GET /organizations?limit=&offset=
func (h *OrganizationHandlers) ListOrganizations(c echo.Context) error {
	limit, offset, err := common.ParsePagination(c, 20)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	organizations, err := h.service.List(c.Request().Context(), limit, offset)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"organizations": organizations,
		"limit":         limit,
		"offset":        offset,
	})
}

func (h *OrganizationHandlers) GetOrganization(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	state, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrganizationHandlers) ActivateOrganization(c echo.Context) error {
	return h.organizationAction(c, h.service.Activate)
}

func (h *OrganizationHandlers) ArchiveOrganization(c echo.Context) error {
	return h.organizationAction(c, h.service.Archive)
}

// GetArchiveDownloadURL returns a presigned link to the archived organization export
func (h *OrganizationHandlers) GetArchiveDownloadURL(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	url, err := h.service.ArchiveDownloadURL(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *OrganizationHandlers) CancelSubscription(c echo.Context) error {
	return h.organizationAction(c, h.service.CancelSubscription)
}

func (h *OrganizationHandlers) ExpireSubscription(c echo.Context) error {
	return h.organizationAction(c, h.service.ExpireSubscription)
}

func (h *OrganizationHandlers) ActivateSubscription(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.ActivateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	state, err := h.service.ActivateSubscription(c.Request().Context(), id, &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrganizationHandlers) AddLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	state, err := h.service.AddLocation(c.Request().Context(), id, &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, state)
}

func (h *OrganizationHandlers) UpdateLocation(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("locationId"), "locationId")
	if err != nil {
		return common.SendValidationError(c, "locationId", err.Error())
	}
	var req services.LocationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	state, err := h.service.UpdateLocation(c.Request().Context(), id, locationID, &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrganizationHandlers) ActivateLocation(c echo.Context) error {
	return h.childAction(c, "locationId", h.service.ActivateLocation)
}

func (h *OrganizationHandlers) ArchiveLocation(c echo.Context) error {
	return h.childAction(c, "locationId", h.service.ArchiveLocation)
}

func (h *OrganizationHandlers) AddEmployee(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	var req services.AddEmployeeRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	state, err := h.service.AddEmployee(c.Request().Context(), id, &req)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusCreated, state)
}

func (h *OrganizationHandlers) AssignEmployee(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	employeeID, err := common.ValidateUUID(c.Param("employeeId"), "employeeId")
	if err != nil {
		return common.SendValidationError(c, "employeeId", err.Error())
	}
	locationID, err := common.ValidateUUID(c.Param("locationId"), "locationId")
	if err != nil {
		return common.SendValidationError(c, "locationId", err.Error())
	}

	state, err := h.service.AssignEmployee(c.Request().Context(), id, employeeID, locationID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrganizationHandlers) InviteEmployee(c echo.Context) error {
	return h.childAction(c, "employeeId", h.service.InviteEmployee)
}

func (h *OrganizationHandlers) ActivateEmployee(c echo.Context) error {
	return h.childAction(c, "employeeId", h.service.ActivateEmployee)
}

func (h *OrganizationHandlers) ArchiveEmployee(c echo.Context) error {
	return h.childAction(c, "employeeId", h.service.ArchiveEmployee)
}

type organizationActionFunc func(ctx context.Context, id uuid.UUID) (*domain.OrganizationState, error)

type childActionFunc func(ctx context.Context, id, childID uuid.UUID) (*domain.OrganizationState, error)

func (h *OrganizationHandlers) organizationAction(c echo.Context, action organizationActionFunc) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}

	state, err := action(c.Request().Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (h *OrganizationHandlers) childAction(c echo.Context, param string, action childActionFunc) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendValidationError(c, "id", err.Error())
	}
	childID, err := common.ValidateUUID(c.Param(param), param)
	if err != nil {
		return common.SendValidationError(c, param, err.Error())
	}

	state, err := action(c.Request().Context(), id, childID)
	if err != nil {
		return h.handleError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

// handleError maps service errors to the standard error body.
func (h *OrganizationHandlers) handleError(c echo.Context, err error) error {
	if vErr, ok := domain.IsValidationError(err); ok {
		return common.SendValidationError(c, vErr.Field, vErr.Message)
	}
	if nfErr, ok := domain.IsNotFoundError(err); ok {
		return common.SendNotFoundError(c, nfErr.Resource+" "+nfErr.ID)
	}
	if errors.Is(err, repositories.ErrOrganizationNotFound) {
		return common.SendNotFoundError(c, "organization")
	}
	if errors.Is(err, repositories.ErrConcurrentModification) {
		return common.SendConflictError(c, "CONCURRENT_MODIFICATION", err.Error())
	}
	if sErr, ok := domain.IsInvalidStateError(err); ok {
		return common.SendConflictError(c, "INVALID_STATE", sErr.Message)
	}

	h.logger.Error().Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("request failed")
	return common.SendServerError(c, "Internal server error")
}
