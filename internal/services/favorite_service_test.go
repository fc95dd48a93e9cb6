// internal/services/favorite_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innovatech/storefront-backend/internal/identity"
	"github.com/innovatech/storefront-backend/internal/models"
)

func TestFavoriteToggle(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteService(db)
	guest := identity.Anonymous(uuid.New().String())
	product := seedProduct(t, db, "Lamp", "35.00", 5)

	isFavorite, err := svc.Toggle(guest, product.ID)
	require.NoError(t, err)
	assert.True(t, isFavorite)

	products, err := svc.List(guest)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, product.ID, products[0].ID)

	// Second toggle removes it.
	isFavorite, err = svc.Toggle(guest, product.ID)
	require.NoError(t, err)
	assert.False(t, isFavorite)

	products, err = svc.List(guest)
	require.NoError(t, err)
	assert.Empty(t, products)

	// And a third re-adds without a unique index collision.
	isFavorite, err = svc.Toggle(guest, product.ID)
	require.NoError(t, err)
	assert.True(t, isFavorite)
}

func TestFavoriteToggleUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteService(db)

	_, err := svc.Toggle(identity.Anonymous(uuid.New().String()), uuid.New())
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestFavoriteMergeOnLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewFavoriteService(db)

	customer := seedCustomer(t, db, "fav-merge@example.com")
	shared := seedProduct(t, db, "Poster", "9.00", 5)
	anonOnly := seedProduct(t, db, "Mug", "12.00", 5)
	sessionOnly := seedProduct(t, db, "Sticker Pack", "4.00", 5)

	token := uuid.New().String()
	guest := identity.Anonymous(token)
	registered := identity.Registered(customer.ID)

	_, err := svc.Toggle(guest, shared.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(guest, anonOnly.ID)
	require.NoError(t, err)
	_, err = svc.Toggle(registered, shared.ID)
	require.NoError(t, err)

	session := []uuid.UUID{sessionOnly.ID, uuid.New()} // unknown product is skipped

	require.NoError(t, svc.MergeOnLogin(customer.ID, token, session))

	products, err := svc.List(registered)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	// Anonymous favorites are gone.
	anonFavorites, err := svc.List(guest)
	require.NoError(t, err)
	assert.Empty(t, anonFavorites)

	// Replaying the merge is a no-op.
	require.NoError(t, svc.MergeOnLogin(customer.ID, token, session))
	products, err = svc.List(registered)
	require.NoError(t, err)
	assert.Len(t, products, 3)

	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)
}
