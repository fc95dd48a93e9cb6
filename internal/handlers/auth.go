// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type AuthHandler struct {
	authService         *services.AuthService
	cartService         *services.CartService
	couponService       *services.CouponService
	favoriteService     *services.FavoriteService
	notificationService *services.NotificationService
}

func NewAuthHandler(authService *services.AuthService, cartService *services.CartService, couponService *services.CouponService, favoriteService *services.FavoriteService, notificationService *services.NotificationService) *AuthHandler {
	return &AuthHandler{
		authService:         authService,
		cartService:         cartService,
		couponService:       couponService,
		favoriteService:     favoriteService,
		notificationService: notificationService,
	}
}

// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			utils.ConflictResponse(c, "Email is already registered")
			return
		}
		utils.InternalErrorResponse(c, "Failed to register")
		return
	}

	h.mergeAnonymousState(c, resp.Customer.ID, nil)

	if h.notificationService != nil {
		go h.notificationService.SendWelcomeEmail(resp.Customer)
	}

	utils.CreatedResponse(c, resp)
}

type loginPayload struct {
	services.LoginRequest
	// Favorites collected client-side before the anonymous cookie existed.
	SessionFavorites []uuid.UUID `json:"session_favorites"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resp, err := h.authService.Login(&req.LoginRequest)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			utils.UnauthorizedResponse(c, "Invalid email or password")
		case errors.Is(err, services.ErrAccountSuspended):
			utils.ForbiddenResponse(c, "Account is suspended")
		default:
			utils.InternalErrorResponse(c, "Failed to sign in")
		}
		return
	}

	h.mergeAnonymousState(c, resp.Customer.ID, req.SessionFavorites)

	utils.SuccessResponse(c, resp)
}

// POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resp, err := h.authService.Refresh(req.RefreshToken)
	if err != nil {
		utils.UnauthorizedResponse(c, "Invalid refresh token")
		return
	}

	utils.SuccessResponse(c, resp)
}

// GET /auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	customerID, ok := requestCustomerID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	customer, err := h.authService.GetProfile(customerID)
	if err != nil {
		utils.NotFoundResponse(c, "Customer not found")
		return
	}

	utils.SuccessResponse(c, customer)
}

// PUT /auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	customerID, ok := requestCustomerID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	customer, err := h.authService.UpdateProfile(customerID, &req)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to update profile")
		return
	}

	utils.SuccessResponse(c, customer)
}

// mergeAnonymousState folds the request's anonymous cart, favorites and
// applied coupon into the now-authenticated customer. Merge failures are
// logged, not surfaced: a login must not fail because guest state could not
// be adopted.
func (h *AuthHandler) mergeAnonymousState(c *gin.Context, customerID uuid.UUID, sessionFavorites []uuid.UUID) {
	token := ""
	if raw, exists := c.Get("anonymous_id"); exists {
		token, _ = raw.(string)
	}
	if token == "" && len(sessionFavorites) == 0 {
		return
	}

	if err := h.favoriteService.MergeOnLogin(customerID, token, sessionFavorites); err != nil {
		logrus.WithError(err).WithField("customer_id", customerID).
			Error("Failed to merge anonymous favorites")
	}
	if err := h.cartService.MergeAnonymousCart(customerID, token); err != nil {
		logrus.WithError(err).WithField("customer_id", customerID).
			Error("Failed to merge anonymous cart")
	}
	if err := h.couponService.MergeAnonymousCoupon(customerID, token); err != nil {
		logrus.WithError(err).WithField("customer_id", customerID).
			Error("Failed to merge anonymous coupon")
	}
}
