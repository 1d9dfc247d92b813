package pharmacy

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/triage/triage/pkg/pagination"
)

type Handler struct {
	directory DirectoryRepository
	inventory InventoryRepository
}

func NewHandler(directory DirectoryRepository, inventory InventoryRepository) *Handler {
	return &Handler{directory: directory, inventory: inventory}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/pharmacies", h.ListPharmacies)
	api.GET("/pharmacies/:id", h.GetPharmacy)
	api.GET("/pharmacies/:id/inventory", h.ListInventory)
}

func (h *Handler) ListPharmacies(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.directory.List(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPharmacy(c echo.Context) error {
	p, err := h.directory.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListInventory(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.directory.Get(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "pharmacy not found")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.inventory.ListByPharmacy(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
