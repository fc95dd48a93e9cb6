// internal/handlers/purchase.go
package handlers

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/innovatech/storefront-backend/internal/models"
	"github.com/innovatech/storefront-backend/internal/services"
	"github.com/innovatech/storefront-backend/internal/utils"
)

type PurchaseHandler struct {
	checkoutService *services.CheckoutService
	authService     *services.AuthService
	pdfService      *services.PDFService
}

func NewPurchaseHandler(checkoutService *services.CheckoutService, authService *services.AuthService, pdfService *services.PDFService) *PurchaseHandler {
	return &PurchaseHandler{
		checkoutService: checkoutService,
		authService:     authService,
		pdfService:      pdfService,
	}
}

// GET /purchases
func (h *PurchaseHandler) GetMyPurchases(c *gin.Context) {
	customerID, ok := requestCustomerID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	purchases, err := h.checkoutService.ListPurchases(customerID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load purchase history")
		return
	}

	utils.SuccessResponse(c, purchases)
}

// GET /admin/purchases
func (h *PurchaseHandler) GetAllPurchases(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.checkoutService.ListAllPurchases(params)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to list purchases")
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /purchases/:id
func (h *PurchaseHandler) GetPurchase(c *gin.Context) {
	purchase, ok := h.loadAuthorizedPurchase(c)
	if !ok {
		return
	}
	utils.SuccessResponse(c, purchase)
}

// GET /purchases/:id/invoice
func (h *PurchaseHandler) DownloadInvoice(c *gin.Context) {
	purchase, ok := h.loadAuthorizedPurchase(c)
	if !ok {
		return
	}

	customer, err := h.authService.GetProfile(purchase.CustomerID)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to load customer")
		return
	}

	pdfBytes, err := h.pdfService.RenderInvoice(purchase, customer)
	if err != nil {
		utils.InternalErrorResponse(c, "Failed to render invoice")
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", purchase.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(200, "application/pdf", pdfBytes)
}

// loadAuthorizedPurchase enforces owner-or-admin access on purchase detail
// routes and writes the error response itself on failure.
func (h *PurchaseHandler) loadAuthorizedPurchase(c *gin.Context) (*models.Purchase, bool) {
	purchaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid purchase ID", nil)
		return nil, false
	}

	purchase, err := h.checkoutService.GetPurchase(purchaseID)
	if err != nil {
		if errors.Is(err, services.ErrPurchaseNotFound) {
			utils.NotFoundResponse(c, "Purchase not found")
			return nil, false
		}
		utils.InternalErrorResponse(c, "Failed to load purchase")
		return nil, false
	}

	customerID, ok := requestCustomerID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return nil, false
	}
	if purchase.CustomerID != customerID && requestRole(c) != string(models.CustomerRoleAdmin) {
		utils.ForbiddenResponse(c, "")
		return nil, false
	}

	return purchase, true
}
