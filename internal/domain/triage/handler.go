package triage

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triage/triage/internal/domain/ingestion"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/triage/runs", h.CreateRun)
}

func (h *Handler) CreateRun(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.XrayRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "xray_ref is required")
	}

	plan, err := h.svc.Run(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, ingestion.ErrArtifactNotFound) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, plan)
}
