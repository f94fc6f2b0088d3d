package handler

import (
	"net/http"

	"ecshop/internal/config"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddCartItemRequest struct {
	ProductInfoID int64 `json:"product_info_id" validate:"required,gt=0"`
	// 省略時は1
	Quantity *int64 `json:"quantity" validate:"omitempty,gte=1,lte=10000"`
}

// /cart, /cart/items/{id} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.DELETE("/items/:id", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddCartItemRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}
	qty := int64(1)
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	out, err := h.uc.AddItem(c.Request().Context(), userID, usecase.AddCartItemInput{
		ProductInfoID: req.ProductInfoID,
		Quantity:      qty,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.RemoveItem(c.Request().Context(), userID, itemID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
