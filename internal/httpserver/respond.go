package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/logging"
	"github.com/bloombouqet/bloom_shop/internal/repo"
	"github.com/bloombouqet/bloom_shop/internal/service"
)

func respondSuccess(c echo.Context, code int, message string, data interface{}) error {
	body := echo.Map{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(code, body)
}

// respondError maps domain errors to the JSON error envelope. Internal error
// detail leaves the process only when debug mode is on.
func respondError(c echo.Context, debug bool, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"success": false,
			"message": "Validation failed",
			"errors":  ve.Fields,
		})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": "Unauthenticated.",
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"success": false,
			"message": "Invalid login credentials",
		})
	case repo.IsNotFound(err):
		return c.JSON(http.StatusNotFound, echo.Map{
			"success": false,
			"message": "Not found",
		})
	default:
		logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		body := echo.Map{
			"success": false,
			"message": "Server Error",
		}
		if debug {
			body["error"] = err.Error()
		}
		return c.JSON(http.StatusInternalServerError, body)
	}
}
