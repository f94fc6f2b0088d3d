package handler

import (
	"net/http"
	"strconv"

	"ecshop/internal/config"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message, Fields: he.Fields})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// bodyを読んでc.Validateで検証する
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return usecase.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}
	return nil
}

//middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(int64)
	if !ok || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseIDParam(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// /products のAPI
type ProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewProductHandler(uc *usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/products")
	g.Use(middleware.AuthJWT(cfg))

	g.GET("", h.list)
	g.GET("/:id", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		}
		page = p
	}

	// limit（default 20）
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	var categoryID *int64
	if v := c.QueryParam("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid category_id"})
		}
		categoryID = &id
	}

	out, err := h.uc.List(c.Request().Context(), usecase.ListProductsInput{
		Page:       page,
		Limit:      limit,
		Q:          c.QueryParam("q"),
		CategoryID: categoryID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
