// internal/services/errors.go
package services

import "errors"

// Business-rule failures. These are terminal: the retrying transaction
// runner must never replay an operation that failed with one of them.
var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrProductInUse       = errors.New("product is referenced by carts or purchases")
	ErrCouponNotFound     = errors.New("coupon not found")
	ErrCouponExpired      = errors.New("coupon is expired")
	ErrIdentityUnresolved = errors.New("identity does not resolve to a customer")
	ErrPurchaseNotFound   = errors.New("purchase not found")
)
