package httpserver

import (
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/service/search"
	"github.com/bloombouqet/bloom_shop/internal/util"
)

type SearchHTTP struct {
	ES    *elasticsearch.Client
	Index string
	Debug bool
}

func (h *SearchHTTP) Handler(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing query")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	from, size := util.Calculate(page, size)

	total, products, err := search.Search(c.Request().Context(), h.ES, h.Index, q, from, size)
	if err != nil {
		return respondError(c, h.Debug, err)
	}

	return respondSuccess(c, http.StatusOK, "", echo.Map{
		"total":    total,
		"products": products,
	})
}
