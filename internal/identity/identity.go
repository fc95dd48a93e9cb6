// internal/identity/identity.go
package identity

import (
	"github.com/google/uuid"
)

// Identity is the owner of a cart, favorites and an applied coupon: either a
// registered customer or an anonymous visitor carrying a durable token. The
// zero value is not a valid identity.
type Identity struct {
	kind       kind
	customerID uuid.UUID
	token      string
}

type kind int

const (
	kindNone kind = iota
	kindRegistered
	kindAnonymous
)

func Registered(customerID uuid.UUID) Identity {
	return Identity{kind: kindRegistered, customerID: customerID}
}

func Anonymous(token string) Identity {
	return Identity{kind: kindAnonymous, token: token}
}

func (i Identity) IsRegistered() bool {
	return i.kind == kindRegistered
}

func (i Identity) IsAnonymous() bool {
	return i.kind == kindAnonymous
}

func (i Identity) IsZero() bool {
	return i.kind == kindNone
}

// CustomerID returns the registered customer id; ok is false for anonymous
// or zero identities.
func (i Identity) CustomerID() (uuid.UUID, bool) {
	return i.customerID, i.kind == kindRegistered
}

// Token returns the anonymous token; ok is false for registered or zero
// identities.
func (i Identity) Token() (string, bool) {
	return i.token, i.kind == kindAnonymous
}

func (i Identity) String() string {
	switch i.kind {
	case kindRegistered:
		return "customer:" + i.customerID.String()
	case kindAnonymous:
		return "anonymous:" + i.token
	default:
		return "none"
	}
}
