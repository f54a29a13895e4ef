package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oohgrid/reservation-service/internal/availability"
	"github.com/oohgrid/reservation-service/internal/dto"
	"github.com/oohgrid/reservation-service/internal/middleware"
	"github.com/oohgrid/reservation-service/internal/repository"
	"github.com/oohgrid/reservation-service/internal/service"
)

type AvailabilityHandler struct {
	svc service.AvailabilityService
}

func NewAvailabilityHandler(svc service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

func (h *AvailabilityHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/availability", h.Query)
}

func (h *AvailabilityHandler) Query(c echo.Context) error {
	var req dto.AvailabilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StartDate == "" || req.EndDate == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "start_date and end_date are required")
	}

	qs, err := availability.ParseDate(req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	qe, err := availability.ParseDate(req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	auth := middleware.FromContext(c)
	report, err := h.svc.Query(c.Request().Context(), auth.TenantID, qs, qe, repository.AssetFilters{
		City:      req.City,
		MediaType: req.MediaType,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidWindow) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToAvailabilityResponse(report))
}
