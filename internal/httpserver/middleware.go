package httpserver

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bloombouqet/bloom_shop/internal/models"
	"github.com/bloombouqet/bloom_shop/internal/service"
)

const bearerPrefix = "Bearer "

type AuthMiddleware struct {
	Tokens *service.TokenService
	Debug  bool
}

// RequireAuth resolves the bearer token to its owner before the handler
// runs; handlers never see an unauthenticated request.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return respondError(c, m.Debug, service.ErrUnauthenticated)
		}

		user, tokenID, err := m.Tokens.Resolve(c.Request().Context(), strings.TrimPrefix(header, bearerPrefix))
		if err != nil {
			return respondError(c, m.Debug, err)
		}

		c.Set("user", user)
		c.Set("token_id", tokenID)
		return next(c)
	}
}

func currentUser(c echo.Context) *models.User {
	user, _ := c.Get("user").(*models.User)
	return user
}

func currentTokenID(c echo.Context) uint {
	id, _ := c.Get("token_id").(uint)
	return id
}
