package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *AuthHTTP
	Catalog *CatalogHTTP
	Search  *SearchHTTP
	AuthMW  *AuthMiddleware
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.Auth.Register)
	v1.POST("/login", d.Auth.Login)
	v1.GET("/categories", d.Catalog.GetCategories)
	v1.GET("/products", d.Catalog.GetProducts)
	v1.GET("/products/:id", d.Catalog.GetProduct)
	if d.Search != nil && d.Search.ES != nil {
		v1.GET("/search", d.Search.Handler)
	}

	authed := v1.Group("", d.AuthMW.RequireAuth)

	authed.GET("/user", d.Auth.CurrentUser)
	authed.POST("/logout", d.Auth.Logout)
	authed.PATCH("/profile", d.Auth.UpdateProfile)

	admin := v1.Group("/admin", d.AuthMW.RequireAuth)

	admin.POST("/categories", d.Catalog.CreateCategory)
	admin.DELETE("/categories/:id", d.Catalog.DeleteCategory)
	admin.POST("/products", d.Catalog.CreateProduct)
	admin.PATCH("/products/:id", d.Catalog.PatchProduct)
	admin.DELETE("/products/:id", d.Catalog.DeleteProduct)
}
