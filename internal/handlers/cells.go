// internal/handlers/cells.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/i18n"
	"github.com/pixelmural/mural-backend/internal/services"
	"github.com/pixelmural/mural-backend/internal/utils"
)

type CellHandler struct {
	canvasService *services.CanvasService
}

func NewCellHandler(canvasService *services.CanvasService) *CellHandler {
	return &CellHandler{
		canvasService: canvasService,
	}
}

type purchaseRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
	QuotedPrice     int64  `json:"quoted_price" validate:"required,min=1"`
	QuotedOwner     string `json:"quoted_owner"`
}

type artworkRequest struct {
	Artwork []byte `json:"artwork" validate:"required"`
}

func cellIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "cell id must be an integer", nil)
		return 0, false
	}
	return id, true
}

// respondCellError maps domain errors onto HTTP statuses.
func respondCellError(c *gin.Context, err error) {
	lang := utils.GetLangFromContext(c)

	switch {
	case errors.Is(err, grid.ErrOutOfBounds):
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyCellOutOfBounds), nil)
	case errors.Is(err, grid.ErrAlreadyOwner):
		utils.UnprocessableResponse(c, "ALREADY_OWNER", i18n.T(lang, i18n.KeyCellAlreadyOwner))
	case errors.Is(err, grid.ErrNotOwner):
		utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyCellNotOwner))
	case errors.Is(err, grid.ErrConflict):
		utils.ConflictResponse(c, i18n.T(lang, i18n.KeyCellConflict))
	case errors.Is(err, grid.ErrStoreUnavailable):
		utils.ServiceUnavailableResponse(c, i18n.T(lang, i18n.KeyStoreUnavailable))
	case errors.Is(err, services.ErrPaymentNotConfirmed):
		utils.ErrorResponse(c, http.StatusPaymentRequired, "PAYMENT_REQUIRED", i18n.T(lang, i18n.KeyPaymentFailed), nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}

// GET /cells/:id
func (h *CellHandler) GetCell(c *gin.Context) {
	id, ok := cellIDParam(c)
	if !ok {
		return
	}

	cell, err := h.canvasService.Cell(id)
	if err != nil {
		respondCellError(c, err)
		return
	}

	utils.SuccessResponse(c, newCellView(cell, h.canvasService.Dimensions()))
}

// GET /cells/:id/neighbors
func (h *CellHandler) GetNeighbors(c *gin.Context) {
	id, ok := cellIDParam(c)
	if !ok {
		return
	}

	cells, err := h.canvasService.Neighbors(id)
	if err != nil {
		respondCellError(c, err)
		return
	}

	dims := h.canvasService.Dimensions()
	views := make([]cellView, len(cells))
	for i, cell := range cells {
		views[i] = newCellView(cell, dims)
	}

	utils.SuccessResponse(c, gin.H{"neighbors": views})
}

// POST /cells/:id/quote
func (h *CellHandler) QuoteCell(c *gin.Context) {
	id, ok := cellIDParam(c)
	if !ok {
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	quote, err := h.canvasService.Quote(id, userID)
	if err != nil {
		respondCellError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"cell_id":      quote.CellID,
		"price":        quote.Price,
		"quoted_owner": quote.Owner,
	})
}

// POST /cells/:id/purchase
func (h *CellHandler) PurchaseCell(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := cellIDParam(c)
	if !ok {
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	username, _ := utils.GetUsernameFromContext(c)

	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	quote := grid.Quote{CellID: id, Price: req.QuotedPrice, Owner: req.QuotedOwner}
	buyer := grid.Buyer{ID: userID, Name: username}

	cell, err := h.canvasService.Purchase(c.Request.Context(), quote, buyer, req.PaymentIntentID)
	if err != nil {
		respondCellError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCellPurchased),
		"cell":    newCellView(cell, h.canvasService.Dimensions()),
	})
}

// PUT /cells/:id/artwork
func (h *CellHandler) UpdateArtwork(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := cellIDParam(c)
	if !ok {
		return
	}

	userID, ok := utils.GetUserIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req artworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if len(req.Artwork) == 0 {
		utils.BadRequestResponse(c, "artwork payload is required", nil)
		return
	}

	cell, err := h.canvasService.UpdateArtwork(c.Request.Context(), id, userID, req.Artwork)
	if err != nil {
		respondCellError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyCellArtworkSaved),
		"cell":    newCellView(cell, h.canvasService.Dimensions()),
	})
}
