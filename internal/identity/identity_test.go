// internal/identity/identity_test.go
package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIdentityKinds(t *testing.T) {
	customerID := uuid.New()

	registered := Registered(customerID)
	assert.True(t, registered.IsRegistered())
	assert.False(t, registered.IsAnonymous())
	id, ok := registered.CustomerID()
	assert.True(t, ok)
	assert.Equal(t, customerID, id)
	_, ok = registered.Token()
	assert.False(t, ok)

	anonymous := Anonymous("tok-123")
	assert.True(t, anonymous.IsAnonymous())
	assert.False(t, anonymous.IsRegistered())
	token, ok := anonymous.Token()
	assert.True(t, ok)
	assert.Equal(t, "tok-123", token)
	_, ok = anonymous.CustomerID()
	assert.False(t, ok)

	var zero Identity
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsRegistered())
	assert.False(t, zero.IsAnonymous())
}
