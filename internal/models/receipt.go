// internal/models/receipt.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// PurchaseReceipt is an advisory record of a completed ownership transition.
// It is written after the transition commits and is never the source of
// truth for cell state; a failed receipt write never rolls a purchase back.
type PurchaseReceipt struct {
	BaseModel
	CellID           int           `json:"cell_id" gorm:"not null;index"`
	BuyerID          uuid.UUID     `json:"buyer_id" gorm:"type:uuid;not null;index"`
	BuyerName        string        `json:"buyer_name" gorm:"size:50"`
	SellerID         *uuid.UUID    `json:"seller_id" gorm:"type:uuid;index"`
	SellerName       string        `json:"seller_name" gorm:"size:50"`
	Amount           int64         `json:"amount" gorm:"not null"`
	PaymentReference string        `json:"payment_reference" gorm:"size:255"`
	Status           ReceiptStatus `json:"status" gorm:"type:varchar(20);default:'completed';index"`
	ProcessedAt      *time.Time    `json:"processed_at"`

	// Relationships
	Buyer  User  `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller *User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}
