package httpserver

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/service"
	"github.com/bloombouqet/bloom_shop/internal/util"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.GetProduct(c.Request().Context(), uint(id))
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusOK, "", product)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.GetProducts(c.Request().Context(), offset, limit)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

// imageUpload adapts an optional multipart file into the service input.
// The returned closer is nil when no file was sent.
func imageUpload(c echo.Context) (*service.ImageUpload, multipart.File, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, nil, nil
	}
	src, err := file.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.ImageUpload{
		Filename:    file.Filename,
		ContentType: file.Header.Get(echo.HeaderContentType),
		Data:        src,
	}, src, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ve := map[string][]string{}

	in := service.ProductInput{
		Name:        c.FormValue("name"),
		Description: c.FormValue("description"),
	}

	if raw := c.FormValue("price"); raw == "" {
		ve["price"] = append(ve["price"], "cannot be blank")
	} else if v, err := strconv.ParseFloat(raw, 64); err != nil {
		ve["price"] = append(ve["price"], "must be a number")
	} else {
		in.Price = v
	}

	if raw := c.FormValue("stock"); raw == "" {
		ve["stock"] = append(ve["stock"], "cannot be blank")
	} else if v, err := strconv.ParseUint(raw, 10, 32); err != nil {
		ve["stock"] = append(ve["stock"], "must be an integer")
	} else {
		in.Stock = uint(v)
	}

	if raw := c.FormValue("category_id"); raw == "" {
		ve["category_id"] = append(ve["category_id"], "cannot be blank")
	} else if v, err := strconv.ParseUint(raw, 10, 32); err != nil {
		ve["category_id"] = append(ve["category_id"], "must be an integer")
	} else {
		in.CategoryID = uint(v)
	}

	if len(ve) > 0 {
		return respondError(c, h.Debug, &service.ValidationError{Fields: ve})
	}

	img, closer, err := imageUpload(c)
	if err != nil {
		return respondError(c, h.Debug, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	in.Image = img

	prod, err := h.Svc.CreateProduct(c.Request().Context(), in)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusCreated, "Product added successfully", echo.Map{
		"product": prod,
	})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	params, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	ve := map[string][]string{}
	var patch service.ProductPatch

	if vals, ok := params["name"]; ok && len(vals) > 0 {
		patch.Name = &vals[0]
	}
	if vals, ok := params["description"]; ok && len(vals) > 0 {
		patch.Description = &vals[0]
	}
	if vals, ok := params["price"]; ok && len(vals) > 0 {
		if v, err := strconv.ParseFloat(vals[0], 64); err != nil {
			ve["price"] = append(ve["price"], "must be a number")
		} else {
			patch.Price = &v
		}
	}
	if vals, ok := params["stock"]; ok && len(vals) > 0 {
		if v, err := strconv.ParseUint(vals[0], 10, 32); err != nil {
			ve["stock"] = append(ve["stock"], "must be an integer")
		} else {
			stock := uint(v)
			patch.Stock = &stock
		}
	}
	if vals, ok := params["category_id"]; ok && len(vals) > 0 {
		if v, err := strconv.ParseUint(vals[0], 10, 32); err != nil {
			ve["category_id"] = append(ve["category_id"], "must be an integer")
		} else {
			categoryID := uint(v)
			patch.CategoryID = &categoryID
		}
	}

	if len(ve) > 0 {
		return respondError(c, h.Debug, &service.ValidationError{Fields: ve})
	}

	img, closer, err := imageUpload(c)
	if err != nil {
		return respondError(c, h.Debug, err)
	}
	if closer != nil {
		defer closer.Close()
	}
	patch.Image = img

	prod, err := h.Svc.PatchProduct(c.Request().Context(), uint(id), patch)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusOK, "Product updated successfully", echo.Map{
		"product": prod,
	})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.DeleteProduct(c.Request().Context(), uint(id)); err != nil {
		return respondError(c, h.Debug, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}
