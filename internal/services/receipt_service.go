// internal/services/receipt_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pixelmural/mural-backend/internal/grid"
	"github.com/pixelmural/mural-backend/internal/models"
	"github.com/pixelmural/mural-backend/internal/utils"
)

// ReceiptService keeps an advisory audit trail of completed purchases. The
// grid store is the source of truth; a lost receipt is logged, never fatal.
type ReceiptService struct {
	db *gorm.DB
}

func NewReceiptService(db *gorm.DB) *ReceiptService {
	return &ReceiptService{db: db}
}

// RecordPurchase writes a receipt for a committed transition. prev is the
// cell as it stood before the transition and identifies the seller, if any.
func (s *ReceiptService) RecordPurchase(prev, cell *grid.Cell, paymentRef string) error {
	buyerID, err := uuid.Parse(cell.Owner)
	if err != nil {
		return fmt.Errorf("invalid buyer id %q: %w", cell.Owner, err)
	}

	now := time.Now().UTC()
	receipt := &models.PurchaseReceipt{
		CellID:           cell.ID,
		BuyerID:          buyerID,
		BuyerName:        cell.OwnerName,
		Amount:           cell.Price,
		PaymentReference: paymentRef,
		Status:           models.ReceiptStatusCompleted,
		ProcessedAt:      &now,
	}

	if prev != nil && prev.Owned() {
		if sellerID, err := uuid.Parse(prev.Owner); err == nil {
			receipt.SellerID = &sellerID
		}
		receipt.SellerName = prev.OwnerName
	}

	if err := s.db.Create(receipt).Error; err != nil {
		return fmt.Errorf("failed to create purchase receipt: %w", err)
	}
	return nil
}

// ListForUser returns the receipts where the user was buyer or seller,
// newest first.
func (s *ReceiptService) ListForUser(userID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	var receipts []models.PurchaseReceipt
	var total int64

	query := s.db.Model(&models.PurchaseReceipt{}).
		Where("buyer_id = ? OR seller_id = ?", userID, userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"created_at", "amount", "cell_id"})
	if err := utils.ApplyPagination(query, params).Find(&receipts).Error; err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}

	result := utils.CreatePaginationResult(receipts, total, params)
	return &result, nil
}

// Summary aggregates receipt volume for the admin dashboard.
type ReceiptSummary struct {
	TotalReceipts int64 `json:"total_receipts"`
	TotalVolume   int64 `json:"total_volume"`
	ResaleCount   int64 `json:"resale_count"`
}

func (s *ReceiptService) Summary() (*ReceiptSummary, error) {
	summary := &ReceiptSummary{}

	if err := s.db.Model(&models.PurchaseReceipt{}).
		Count(&summary.TotalReceipts).Error; err != nil {
		return nil, fmt.Errorf("failed to count receipts: %w", err)
	}

	if err := s.db.Model(&models.PurchaseReceipt{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&summary.TotalVolume).Error; err != nil {
		return nil, fmt.Errorf("failed to sum receipt volume: %w", err)
	}

	if err := s.db.Model(&models.PurchaseReceipt{}).
		Where("seller_id IS NOT NULL").
		Count(&summary.ResaleCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count resales: %w", err)
	}

	return summary, nil
}
