package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oohgrid/reservation-service/internal/availability"
	"github.com/oohgrid/reservation-service/internal/dto"
	"github.com/oohgrid/reservation-service/internal/middleware"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/service"
)

type PlanHandler struct {
	planSvc    service.PlanService
	convertSvc service.ConversionService
}

func NewPlanHandler(planSvc service.PlanService, convertSvc service.ConversionService) *PlanHandler {
	return &PlanHandler{planSvc: planSvc, convertSvc: convertSvc}
}

func (h *PlanHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/plans", h.CreatePlan, middleware.RequireWriter)
	g.GET("/plans", h.ListPlans)
	g.GET("/plans/:id", h.GetPlan)
	g.PATCH("/plans/:id/status", h.UpdateStatus, middleware.RequireWriter)
	g.POST("/plans/:id/convert", h.ConvertPlan, middleware.RequireWriter)
}

func (h *PlanHandler) CreatePlan(c echo.Context) error {
	var req dto.CreatePlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if len(req.Items) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "at least one line item is required")
	}

	in := service.CreatePlanInput{
		Name:       req.Name,
		ClientName: req.ClientName,
		Notes:      req.Notes,
	}
	for _, it := range req.Items {
		start, err := availability.ParseDate(it.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		end, err := availability.ParseDate(it.EndDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.Items = append(in.Items, service.PlanItemInput{
			AssetID:   it.AssetID,
			StartDate: start,
			EndDate:   end,
			Price:     it.Price,
		})
	}

	auth := middleware.FromContext(c)
	plan, err := h.planSvc.CreatePlan(c.Request().Context(), auth.TenantID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAssetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidWindow), errors.Is(err, service.ErrPlanEmpty):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToPlanResponse(plan))
}

func (h *PlanHandler) GetPlan(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	auth := middleware.FromContext(c)
	plan, err := h.planSvc.GetPlan(c.Request().Context(), auth.TenantID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}

func (h *PlanHandler) ListPlans(c echo.Context) error {
	var status *models.PlanStatus
	if s := c.QueryParam("status"); s != "" {
		ps := models.PlanStatus(s)
		if !ps.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status value")
		}
		status = &ps
	}

	auth := middleware.FromContext(c)
	plans, err := h.planSvc.ListPlans(c.Request().Context(), auth.TenantID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.PlanResponse, len(plans))
	for i := range plans {
		resp[i] = dto.ToPlanResponse(&plans[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *PlanHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	var req dto.UpdatePlanStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	auth := middleware.FromContext(c)
	plan, err := h.planSvc.UpdateStatus(c.Request().Context(), auth.TenantID, uint(id), models.PlanStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPlanNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrPlanImmutable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToPlanResponse(plan))
}

func (h *PlanHandler) ConvertPlan(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid plan id")
	}

	var req dto.ConvertPlanRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	in := service.ConvertInput{
		PlanID:       uint(id),
		CampaignName: req.CampaignName,
		Notes:        req.Notes,
	}
	if req.StartDate != "" {
		start, err := availability.ParseDate(req.StartDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.StartDate = &start
	}
	if req.EndDate != "" {
		end, err := availability.ParseDate(req.EndDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		in.EndDate = &end
	}

	auth := middleware.FromContext(c)
	result, err := h.convertSvc.Convert(c.Request().Context(), auth.TenantID, in)
	if err != nil {
		var conflictErr *service.ConflictError
		var partialErr *service.PartialFailureError
		switch {
		case errors.As(err, &conflictErr):
			return echo.NewHTTPError(http.StatusConflict, dto.ToConflictResponse(conflictErr))
		case errors.As(err, &partialErr):
			return echo.NewHTTPError(http.StatusInternalServerError, dto.ToPartialFailureResponse(partialErr))
		case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrAssetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanRejected), errors.Is(err, service.ErrPlanEmpty), errors.Is(err, service.ErrInvalidWindow):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	status := http.StatusCreated
	if result.AlreadyConverted {
		status = http.StatusOK
	}
	return c.JSON(status, dto.ToConvertResponse(result))
}
