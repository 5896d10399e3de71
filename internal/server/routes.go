package server

import (
	"net/http"

	"camerastore/internal/config"
	"camerastore/internal/handler"
	"camerastore/internal/repository"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Admin   *handler.AdminHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, db Pinger, h Handlers) {
	e.GET("/health", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context()); err != nil {
			c.Logger().Errorf("health: %v", err)
			return c.JSON(http.StatusServiceUnavailable, handler.Envelope{Success: false, Message: "database unavailable"})
		}
		return c.JSON(http.StatusOK, handler.Envelope{Success: true, Message: "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg, userRepo)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, cfg, userRepo)
	h.Order.RegisterRoutes(e, cfg, userRepo)
	h.Admin.RegisterRoutes(e, cfg, userRepo)
}
