// internal/handlers/admin.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/utils"
)

type AdminHandler struct {
	canvasService  *services.CanvasService
	receiptService *services.ReceiptService
}

func NewAdminHandler(canvasService *services.CanvasService, receiptService *services.ReceiptService) *AdminHandler {
	return &AdminHandler{
		canvasService:  canvasService,
		receiptService: receiptService,
	}
}

// GET /admin/dashboard
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	stats := h.canvasService.Stats()

	receipts, err := h.receiptService.Summary()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"canvas":   stats,
		"receipts": receipts,
	})
}
