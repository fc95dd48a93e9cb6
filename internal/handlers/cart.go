// internal/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type CartHandler struct {
	cartService     *services.CartService
	couponService   *services.CouponService
	checkoutService *services.CheckoutService
}

func NewCartHandler(cartService *services.CartService, couponService *services.CouponService, checkoutService *services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		couponService:   couponService,
		checkoutService: checkoutService,
	}
}

// GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	ident := requestIdentity(c)

	cart, err := h.cartService.GetCart(ident)
	if err != nil {
		if errors.Is(err, services.ErrIdentityUnresolved) {
			utils.UnauthorizedResponse(c, "")
			return
		}
		utils.InternalErrorResponse(c, "Failed to load cart")
		return
	}

	utils.SuccessResponse(c, cart)
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// POST /cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	cart, err := h.cartService.AddItem(requestIdentity(c), req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			utils.NotFoundResponse(c, "Product not found")
		case errors.Is(err, services.ErrIdentityUnresolved):
			utils.ConflictResponse(c, "Customer profile not found for this account")
		default:
			utils.InternalErrorResponse(c, "Failed to add item to cart")
		}
		return
	}

	utils.SuccessResponse(c, cart)
}

type updateQuantityRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
}

// POST /cart/update-quantity
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	ident := requestIdentity(c)
	cart, err := h.cartService.GetCart(ident)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load cart")
		return
	}
	if cart == nil {
		utils.NotFoundResponse(c, "Cart is empty")
		return
	}

	if err := h.cartService.UpdateQuantity(cart.ID, req.ProductID, req.Quantity); err != nil {
		utils.InternalErrorResponse(c, "Failed to update quantity")
		return
	}

	cart, err = h.cartService.GetCart(ident)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load cart")
		return
	}
	utils.SuccessResponse(c, cart)
}

type removeItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// POST /cart/remove-item
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req removeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	ident := requestIdentity(c)
	cart, err := h.cartService.GetCart(ident)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load cart")
		return
	}
	if cart == nil {
		utils.SuccessResponse(c, nil)
		return
	}

	if err := h.cartService.RemoveItem(cart.ID, req.ProductID); err != nil {
		utils.InternalErrorResponse(c, "Failed to remove item")
		return
	}

	cart, err = h.cartService.GetCart(ident)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load cart")
		return
	}
	utils.SuccessResponse(c, cart)
}

type applyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// POST /cart/apply-coupon
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	var req applyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	applied, err := h.couponService.Apply(requestIdentity(c), req.Code, timeNow())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound):
			utils.NotFoundResponse(c, "Coupon not found")
		case errors.Is(err, services.ErrCouponExpired):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "COUPON_EXPIRED", "Coupon is expired", nil)
		default:
			utils.InternalErrorResponse(c, "Failed to apply coupon")
		}
		return
	}

	utils.SuccessResponse(c, applied)
}

// DELETE /cart/coupon
func (h *CartHandler) ClearCoupon(c *gin.Context) {
	if err := h.couponService.Clear(requestIdentity(c)); err != nil {
		utils.InternalErrorResponse(c, "Failed to clear coupon")
		return
	}
	utils.SuccessResponse(c, nil)
}

// POST /cart/pay
func (h *CartHandler) Pay(c *gin.Context) {
	purchase, err := h.checkoutService.CreatePurchaseFromCart(c.Request.Context(), requestIdentity(c))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyCart):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "EMPTY_CART", "Cart is empty", nil)
		case errors.Is(err, services.ErrIdentityUnresolved):
			utils.UnauthorizedResponse(c, "Sign in to complete your purchase")
		default:
			utils.InternalErrorResponse(c, "Checkout failed")
		}
		return
	}

	utils.CreatedResponse(c, purchase)
}
