package server

import (
	"net/http"

	"ecshop/internal/config"
	"ecshop/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth    *handler.AuthHandler
	Product *handler.ProductHandler
	Cart    *handler.CartHandler
	Order   *handler.OrderHandler
	Address *handler.AddressHandler
	Admin   *handler.AdminHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	h.Auth.RegisterRoutes(e, cfg.AuthRateLimitPerMin)
	h.Product.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)
	h.Address.RegisterRoutes(e, cfg)
	h.Admin.RegisterRoutes(e, cfg)
}
