// internal/handlers/identity.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innovatech/storefront-backend/internal/identity"
)

func timeNow() time.Time {
	return time.Now().UTC()
}

// requestIdentity resolves who this request acts as. A valid JWT wins over
// the anonymous token, so a signed-in customer is never treated as a guest.
// The zero Identity comes back only when neither middleware ran.
func requestIdentity(c *gin.Context) identity.Identity {
	if customerID, ok := requestCustomerID(c); ok {
		return identity.Registered(customerID)
	}
	if token, exists := c.Get("anonymous_id"); exists {
		if s, ok := token.(string); ok && s != "" {
			return identity.Anonymous(s)
		}
	}
	return identity.Identity{}
}

func requestCustomerID(c *gin.Context) (uuid.UUID, bool) {
	raw, exists := c.Get("customer_id")
	if !exists {
		return uuid.Nil, false
	}
	s, ok := raw.(string)
	if !ok {
		return uuid.Nil, false
	}
	customerID, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return customerID, true
}

func requestRole(c *gin.Context) string {
	if raw, exists := c.Get("role"); exists {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}
