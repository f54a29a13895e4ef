package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/oohgrid/reservation-service/internal/dto"
	"github.com/oohgrid/reservation-service/internal/middleware"
	"github.com/oohgrid/reservation-service/internal/models"
	"github.com/oohgrid/reservation-service/internal/service"
)

type CampaignHandler struct {
	svc service.CampaignService
}

func NewCampaignHandler(svc service.CampaignService) *CampaignHandler {
	return &CampaignHandler{svc: svc}
}

func (h *CampaignHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/campaigns", h.ListCampaigns)
	g.GET("/campaigns/:id", h.GetCampaign)
	g.PATCH("/campaigns/:id/status", h.UpdateStatus, middleware.RequireWriter)
	g.PATCH("/campaigns/:id/assets/:assetID/status", h.UpdateAssetStatus, middleware.RequireWriter)
}

func (h *CampaignHandler) GetCampaign(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}

	auth := middleware.FromContext(c)
	campaign, err := h.svc.GetCampaign(c.Request().Context(), auth.TenantID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrCampaignNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *CampaignHandler) ListCampaigns(c echo.Context) error {
	var status *models.CampaignStatus
	if s := c.QueryParam("status"); s != "" {
		cs := models.CampaignStatus(s)
		if !cs.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status value")
		}
		status = &cs
	}

	auth := middleware.FromContext(c)
	campaigns, err := h.svc.ListCampaigns(c.Request().Context(), auth.TenantID, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]dto.CampaignResponse, len(campaigns))
	for i := range campaigns {
		resp[i] = dto.ToCampaignResponse(&campaigns[i])
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *CampaignHandler) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}

	var req dto.UpdateCampaignStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	auth := middleware.FromContext(c)
	campaign, err := h.svc.UpdateStatus(c.Request().Context(), auth.TenantID, uint(id), models.CampaignStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToCampaignResponse(campaign))
}

func (h *CampaignHandler) UpdateAssetStatus(c echo.Context) error {
	campaignID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid campaign id")
	}
	assetID, err := strconv.ParseUint(c.Param("assetID"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid asset id")
	}

	var req dto.UpdateCampaignAssetStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	auth := middleware.FromContext(c)
	ca, err := h.svc.UpdateAssetStatus(c.Request().Context(), auth.TenantID, uint(campaignID), uint(assetID), models.CampaignAssetStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampaignNotFound), errors.Is(err, service.ErrCampaignAssetNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToCampaignAssetResponse(ca))
}
