// internal/handlers/promotion.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type PromotionHandler struct {
	promotionService *services.PromotionService
}

func NewPromotionHandler(promotionService *services.PromotionService) *PromotionHandler {
	return &PromotionHandler{promotionService: promotionService}
}

// GET /admin/promotions
func (h *PromotionHandler) GetPromotions(c *gin.Context) {
	promotions, err := h.promotionService.ListPromotions()
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list promotions")
		return
	}

	utils.SuccessResponse(c, promotions)
}

// POST /admin/promotions
func (h *PromotionHandler) CreatePromotion(c *gin.Context) {
	var req services.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	promotion, err := h.promotionService.CreatePromotion(&req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, promotion)
}

// PUT /admin/promotions/:id
func (h *PromotionHandler) UpdatePromotion(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promotion ID", nil)
		return
	}

	var req services.PromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	promotion, err := h.promotionService.UpdatePromotion(promotionID, &req)
	if err != nil {
		if errors.Is(err, services.ErrPromotionNotFound) {
			utils.NotFoundResponse(c, "Promotion not found")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, promotion)
}

// DELETE /admin/promotions/:id
func (h *PromotionHandler) DeletePromotion(c *gin.Context) {
	promotionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid promotion ID", nil)
		return
	}

	if err := h.promotionService.DeletePromotion(promotionID); err != nil {
		if errors.Is(err, services.ErrPromotionNotFound) {
			utils.NotFoundResponse(c, "Promotion not found")
			return
		}
		utils.InternalErrorResponse(c, "Failed to delete promotion")
		return
	}

	utils.SuccessResponse(c, nil)
}
