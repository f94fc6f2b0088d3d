package usecase_test

import (
	"context"
	"net/http"
	"testing"

	infraRepo "ecshop/internal/infra/repository"
	"ecshop/internal/testutil"
	"ecshop/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// Product
// =====================

func TestProductUsecase_ListAndGet(t *testing.T) {
	imp, gdb, _ := newImporter(t)
	ctx := context.Background()
	_, err := imp.Import(ctx, usecase.ImportInput{Source: testutil.WriteFeed(t, testutil.AcmeFeed)})
	require.NoError(t, err)
	_, err = imp.Import(ctx, usecase.ImportInput{Source: testutil.WriteFeed(t, testutil.BetaFeed)})
	require.NoError(t, err)

	uc := usecase.NewProductUsecase(infraRepo.NewProductGormRepository(gdb), infraRepo.NewProductInfoGormRepository(gdb))

	list, err := uc.List(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Items, 1)

	d, err := uc.Get(ctx, list.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Hammer", d.Name)
	assert.Equal(t, "Tools", d.Category)
	require.Len(t, d.Listings, 2)
	assert.Equal(t, "Acme", d.Listings[0].ShopName)
	assert.Len(t, d.Listings[0].Parameters, 2)
	assert.Equal(t, "Beta Store", d.Listings[1].ShopName)
	assert.Len(t, d.Listings[1].Parameters, 1)

	_, err = uc.Get(ctx, 9999)
	assertHTTPStatus(t, err, http.StatusNotFound)
}

func TestProductUsecase_ListValidation(t *testing.T) {
	gdb := testutil.NewDB(t)
	uc := usecase.NewProductUsecase(infraRepo.NewProductGormRepository(gdb), infraRepo.NewProductInfoGormRepository(gdb))
	ctx := context.Background()

	cases := []usecase.ListProductsInput{
		{Page: 0, Limit: 20},
		{Page: 1, Limit: 0},
		{Page: 1, Limit: 101},
		{Page: 1, Limit: 20, Q: string(make([]byte, 101))},
	}
	for _, in := range cases {
		_, err := uc.List(ctx, in)
		assertHTTPStatus(t, err, http.StatusBadRequest)
	}

	out, err := uc.List(ctx, usecase.ListProductsInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Zero(t, out.Total)
}

// =====================
// Contacts / Delivery addresses
// =====================

func TestAddressUsecase(t *testing.T) {
	gdb := testutil.NewDB(t)
	uc := usecase.NewAddressUsecase(infraRepo.NewDeliveryAddressGormRepository(gdb), infraRepo.NewContactGormRepository(gdb))
	ctx := context.Background()
	owner := createUser(t, gdb, "owner@example.com")
	other := createUser(t, gdb, "other@example.com")

	a, err := uc.AddAddress(ctx, owner.ID, usecase.DeliveryAddressInput{AddressLine: " 1 Main St ", City: "Springfield", PostalCode: "12345", Country: "US"})
	require.NoError(t, err)
	assert.Equal(t, "1 Main St", a.AddressLine)

	_, err = uc.AddAddress(ctx, owner.ID, usecase.DeliveryAddressInput{AddressLine: "x", City: " "})
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"city": "required", "postal_code": "required", "country": "required"}, he.Fields)

	c, err := uc.AddContact(ctx, owner.ID, usecase.ContactInput{LastName: "Doe", FirstName: "Jane", Email: "jane@example.com", Phone: "+100"})
	require.NoError(t, err)

	addrs, err := uc.ListAddresses(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, addrs, 1)
	contacts, err := uc.ListContacts(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, contacts)

	// 他人のものは消せない
	assertHTTPStatus(t, uc.DeleteAddress(ctx, other.ID, a.ID), http.StatusNotFound)
	assertHTTPStatus(t, uc.DeleteContact(ctx, other.ID, c.ID), http.StatusNotFound)

	require.NoError(t, uc.DeleteAddress(ctx, owner.ID, a.ID))
	require.NoError(t, uc.DeleteContact(ctx, owner.ID, c.ID))
	assertHTTPStatus(t, uc.DeleteContact(ctx, owner.ID, c.ID), http.StatusNotFound)
}
