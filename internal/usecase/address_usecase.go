package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"
)

// 配送先住所と連絡先（注文確定時に選ぶもの）
type AddressUsecase struct {
	addresses repo.DeliveryAddressRepository
	contacts  repo.ContactRepository
}

// DI
func NewAddressUsecase(addresses repo.DeliveryAddressRepository, contacts repo.ContactRepository) *AddressUsecase {
	return &AddressUsecase{addresses: addresses, contacts: contacts}
}

type DeliveryAddressInput struct {
	AddressLine string
	City        string
	PostalCode  string
	Country     string
}

type ContactInput struct {
	LastName   string
	FirstName  string
	MiddleName string
	Email      string
	Phone      string
}

func (u *AddressUsecase) ListAddresses(ctx context.Context, userID int64) ([]model.DeliveryAddress, error) {
	if userID <= 0 {
		return nil, errUnauthorized
	}
	list, err := u.addresses.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errDB
	}
	return list, nil
}

func (u *AddressUsecase) AddAddress(ctx context.Context, userID int64, in DeliveryAddressInput) (model.DeliveryAddress, error) {
	if userID <= 0 {
		return model.DeliveryAddress{}, errUnauthorized
	}
	a := model.DeliveryAddress{
		UserID:      userID,
		AddressLine: strings.TrimSpace(in.AddressLine),
		City:        strings.TrimSpace(in.City),
		PostalCode:  strings.TrimSpace(in.PostalCode),
		Country:     strings.TrimSpace(in.Country),
		CreatedAt:   time.Now(),
	}
	if fields := requireFields(map[string]string{
		"address_line": a.AddressLine,
		"city":         a.City,
		"postal_code":  a.PostalCode,
		"country":      a.Country,
	}); fields != nil {
		return model.DeliveryAddress{}, NewValidationError(fields)
	}

	created, err := u.addresses.Create(ctx, a)
	if err != nil {
		return model.DeliveryAddress{}, errDB
	}
	return created, nil
}

func (u *AddressUsecase) DeleteAddress(ctx context.Context, userID int64, id int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	err := u.addresses.DeleteOwned(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return errDB
	}
	return nil
}

func (u *AddressUsecase) ListContacts(ctx context.Context, userID int64) ([]model.Contact, error) {
	if userID <= 0 {
		return nil, errUnauthorized
	}
	list, err := u.contacts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errDB
	}
	return list, nil
}

func (u *AddressUsecase) AddContact(ctx context.Context, userID int64, in ContactInput) (model.Contact, error) {
	if userID <= 0 {
		return model.Contact{}, errUnauthorized
	}
	c := model.Contact{
		UserID:     userID,
		LastName:   strings.TrimSpace(in.LastName),
		FirstName:  strings.TrimSpace(in.FirstName),
		MiddleName: strings.TrimSpace(in.MiddleName),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		CreatedAt:  time.Now(),
	}
	if fields := requireFields(map[string]string{
		"last_name":  c.LastName,
		"first_name": c.FirstName,
		"email":      c.Email,
		"phone":      c.Phone,
	}); fields != nil {
		return model.Contact{}, NewValidationError(fields)
	}

	created, err := u.contacts.Create(ctx, c)
	if err != nil {
		return model.Contact{}, errDB
	}
	return created, nil
}

func (u *AddressUsecase) DeleteContact(ctx context.Context, userID int64, id int64) error {
	if userID <= 0 {
		return errUnauthorized
	}
	err := u.contacts.DeleteOwned(ctx, id, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return errDB
	}
	return nil
}

// 空の項目があれば項目名→"required"
func requireFields(values map[string]string) map[string]string {
	var fields map[string]string
	for k, v := range values {
		if v == "" {
			if fields == nil {
				fields = map[string]string{}
			}
			fields[k] = "required"
		}
	}
	return fields
}
