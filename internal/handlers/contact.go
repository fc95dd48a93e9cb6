// internal/handlers/contact.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type ContactHandler struct {
	notificationService *services.NotificationService
}

func NewContactHandler(notificationService *services.NotificationService) *ContactHandler {
	return &ContactHandler{notificationService: notificationService}
}

// POST /contact
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req services.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	if err := h.notificationService.SendContactEmail(&req); err != nil {
		utils.InternalErrorResponse(c, "Failed to send message")
		return
	}

	utils.SuccessResponse(c, gin.H{"message": "Message sent"})
}
