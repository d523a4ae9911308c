package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/service"
)

type CatalogHTTP struct {
	Svc   *service.CatalogService
	Debug bool
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	categories, err := h.Svc.Categories(c.Request().Context())
	if err != nil {
		return respondError(c, h.Debug, err)
	}
	return respondSuccess(c, http.StatusOK, "", categories)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name" form:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cat, err := h.Svc.CreateCategory(c.Request().Context(), req.Name)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusCreated, "Category added successfully", echo.Map{
		"category": cat,
	})
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid category id")
	}

	if err := h.Svc.DeleteCategory(c.Request().Context(), uint(id)); err != nil {
		return respondError(c, h.Debug, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Category deleted successfully",
	})
}
