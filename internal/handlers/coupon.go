// internal/handlers/coupon.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type CouponHandler struct {
	couponService *services.CouponService
}

func NewCouponHandler(couponService *services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: couponService}
}

// GET /coupons/validate/:code
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	coupon, err := h.couponService.Validate(c.Param("code"), timeNow())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrCouponNotFound):
			utils.NotFoundResponse(c, "Coupon not found")
		case errors.Is(err, services.ErrCouponExpired):
			utils.ErrorResponse(c, http.StatusUnprocessableEntity, "COUPON_EXPIRED", "Coupon is expired", nil)
		default:
			utils.InternalErrorResponse(c, "Failed to validate coupon")
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"code":             coupon.Code,
		"discount_percent": coupon.DiscountPercent,
	})
}

// GET /admin/coupons
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.couponService.ListCoupons(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list coupons")
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/coupons
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req services.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	coupon, err := h.couponService.CreateCoupon(&req)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to create coupon")
		return
	}

	utils.CreatedResponse(c, coupon)
}

// PUT /admin/coupons/:code
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	var req services.CouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	coupon, err := h.couponService.UpdateCoupon(c.Param("code"), &req)
	if err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.NotFoundResponse(c, "Coupon not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to update coupon")
		return
	}

	utils.SuccessResponse(c, coupon)
}

// DELETE /admin/coupons/:code
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	if err := h.couponService.DeleteCoupon(c.Param("code")); err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.NotFoundResponse(c, "Coupon not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to delete coupon")
		return
	}

	utils.SuccessResponse(c, nil)
}
