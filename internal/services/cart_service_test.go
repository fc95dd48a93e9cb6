// internal/services/cart_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
)

func TestCartAddItem(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	guest := identity.Anonymous(uuid.New().String())
	product := seedProduct(t, db, "USB Hub", "24.99", 10)

	cart, err := svc.AddItem(guest, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, product.ID, cart.Items[0].ProductID)

	// Adding the same product again increments the existing line.
	cart, err = svc.AddItem(guest, product.ID, 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestCartAddItemNormalizesQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	guest := identity.Anonymous(uuid.New().String())
	product := seedProduct(t, db, "Webcam", "59.00", 5)

	cart, err := svc.AddItem(guest, product.ID, 0)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCartAddItemUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	_, err := svc.AddItem(identity.Anonymous(uuid.New().String()), uuid.New(), 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartAddItemUnresolvedCustomer(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	product := seedProduct(t, db, "Mouse", "15.00", 5)

	// A JWT can outlive its customer row; the cart must not be created.
	_, err := svc.AddItem(identity.Registered(uuid.New()), product.ID, 1)
	assert.ErrorIs(t, err, ErrIdentityUnresolved)
}

func TestCartUpdateQuantity(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	guest := identity.Anonymous(uuid.New().String())
	product := seedProduct(t, db, "Headset", "89.00", 5)

	cart, err := svc.AddItem(guest, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateQuantity(cart.ID, product.ID, 7))
	cart, err = svc.GetCart(guest)
	require.NoError(t, err)
	assert.Equal(t, 7, cart.Items[0].Quantity)

	// Zero removes the line entirely.
	require.NoError(t, svc.UpdateQuantity(cart.ID, product.ID, 0))
	cart, err = svc.GetCart(guest)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// The product can be re-added after removal.
	cart, err = svc.AddItem(guest, product.ID, 1)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
}

func TestCartRemoveItemAbsentIsNoop(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)
	guest := identity.Anonymous(uuid.New().String())
	product := seedProduct(t, db, "Monitor", "199.00", 3)

	cart, err := svc.AddItem(guest, product.ID, 1)
	require.NoError(t, err)

	assert.NoError(t, svc.RemoveItem(cart.ID, uuid.New()))
}

func TestCartGetCartAbsent(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	cart, err := svc.GetCart(identity.Anonymous(uuid.New().String()))
	require.NoError(t, err)
	assert.Nil(t, cart)
}

func TestMergeAnonymousCart(t *testing.T) {
	db := newTestDB(t)
	svc := NewCartService(db)

	customer := seedCustomer(t, db, "merge@example.com")
	shared := seedProduct(t, db, "Laptop Stand", "39.00", 10)
	anonOnly := seedProduct(t, db, "Desk Mat", "19.00", 10)

	token := uuid.New().String()
	guest := identity.Anonymous(token)
	registered := identity.Registered(customer.ID)

	_, err := svc.AddItem(guest, shared.ID, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(guest, anonOnly.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(registered, shared.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MergeAnonymousCart(customer.ID, token))

	cart, err := svc.GetCart(registered)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	quantities := map[uuid.UUID]int{}
	for _, item := range cart.Items {
		quantities[item.ProductID] = item.Quantity
	}
	assert.Equal(t, 3, quantities[shared.ID])
	assert.Equal(t, 1, quantities[anonOnly.ID])

	// Anonymous cart is gone.
	anonCart, err := svc.GetCart(guest)
	require.NoError(t, err)
	assert.Nil(t, anonCart)

	// Replaying the merge changes nothing.
	require.NoError(t, svc.MergeAnonymousCart(customer.ID, token))
	cart, err = svc.GetCart(registered)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	var count int64
	require.NoError(t, db.Model(&models.Cart{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
