package therapy

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triage/triage/pkg/pagination"
)

type Handler struct {
	formulary FormularyRepository
}

func NewHandler(formulary FormularyRepository) *Handler {
	return &Handler{formulary: formulary}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/formulary", h.ListFormulary)
	api.GET("/formulary/:sku", h.GetEntry)
}

func (h *Handler) ListFormulary(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.formulary.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetEntry(c echo.Context) error {
	e, err := h.formulary.GetBySKU(c.Request().Context(), c.Param("sku"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "formulary entry not found")
	}
	return c.JSON(http.StatusOK, e)
}
