// internal/handlers/favorite.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type FavoriteHandler struct {
	favoriteService *services.FavoriteService
	cartService     *services.CartService
	couponService   *services.CouponService
}

func NewFavoriteHandler(favoriteService *services.FavoriteService, cartService *services.CartService, couponService *services.CouponService) *FavoriteHandler {
	return &FavoriteHandler{
		favoriteService: favoriteService,
		cartService:     cartService,
		couponService:   couponService,
	}
}

// GET /favorites
func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	products, err := h.favoriteService.List(requestIdentity(c))
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list favorites")
		return
	}

	utils.SuccessResponse(c, products)
}

type toggleFavoriteRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// POST /favorites/toggle
func (h *FavoriteHandler) ToggleFavorite(c *gin.Context) {
	var req toggleFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	isFavorite, err := h.favoriteService.Toggle(requestIdentity(c), req.ProductID)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			utils.NotFoundResponse(c, "Product not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to toggle favorite")
		return
	}

	utils.SuccessResponse(c, gin.H{"is_favorite": isFavorite})
}

type mergeRequest struct {
	SessionFavorites []uuid.UUID `json:"session_favorites"`
}

// POST /favorites/merge
//
// Explicit merge for clients that sign in through a flow that bypasses the
// login handler (e.g. a session restored from a refresh token).
func (h *FavoriteHandler) Merge(c *gin.Context) {
	customerID, ok := requestCustomerID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req mergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	token := ""
	if raw, exists := c.Get("anonymous_id"); exists {
		token, _ = raw.(string)
	}

	if err := h.favoriteService.MergeOnLogin(customerID, token, req.SessionFavorites); err != nil {
		utils.InternalErrorResponse(c, "Failed to merge favorites")
		return
	}
	if err := h.cartService.MergeAnonymousCart(customerID, token); err != nil {
		utils.InternalErrorResponse(c, "Failed to merge cart")
		return
	}
	if err := h.couponService.MergeAnonymousCoupon(customerID, token); err != nil {
		utils.InternalErrorResponse(c, "Failed to merge coupon")
		return
	}

	utils.SuccessResponse(c, nil)
}
