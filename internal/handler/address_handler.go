package handler

import (
	"net/http"

	"ecshop/internal/config"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /delivery-addresses と /contacts
type AddressHandler struct {
	uc *usecase.AddressUsecase
}

// DI
func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

type DeliveryAddressRequest struct {
	AddressLine string `json:"address_line" validate:"required,max=255"`
	City        string `json:"city" validate:"required,max=100"`
	PostalCode  string `json:"postal_code" validate:"required,max=20"`
	Country     string `json:"country" validate:"required,max=100"`
}

type ContactRequest struct {
	LastName   string `json:"last_name" validate:"required,max=50"`
	FirstName  string `json:"first_name" validate:"required,max=50"`
	MiddleName string `json:"middle_name" validate:"max=50"`
	Email      string `json:"email" validate:"required,email,max=255"`
	Phone      string `json:"phone" validate:"required,max=20"`
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	a := e.Group("/delivery-addresses")
	a.Use(middleware.AuthJWT(cfg))
	a.GET("", h.listAddresses)
	a.POST("", h.addAddress)
	a.DELETE("/:id", h.deleteAddress)

	ct := e.Group("/contacts")
	ct.Use(middleware.AuthJWT(cfg))
	ct.GET("", h.listContacts)
	ct.POST("", h.addContact)
	ct.DELETE("/:id", h.deleteContact)
}

func (h *AddressHandler) listAddresses(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	out, err := h.uc.ListAddresses(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AddressHandler) addAddress(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	var req DeliveryAddressRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddAddress(c.Request().Context(), userID, usecase.DeliveryAddressInput{
		AddressLine: req.AddressLine,
		City:        req.City,
		PostalCode:  req.PostalCode,
		Country:     req.Country,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AddressHandler) deleteAddress(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.DeleteAddress(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AddressHandler) listContacts(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	out, err := h.uc.ListContacts(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AddressHandler) addContact(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	var req ContactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return writeError(c, err)
	}

	out, err := h.uc.AddContact(c.Request().Context(), userID, usecase.ContactInput{
		LastName:   req.LastName,
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AddressHandler) deleteContact(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, ok := parseIDParam(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	if err := h.uc.DeleteContact(c.Request().Context(), userID, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
