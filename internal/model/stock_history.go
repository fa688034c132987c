package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdjustmentType string

const (
	AdjustIn  AdjustmentType = "in"
	AdjustOut AdjustmentType = "out"
	AdjustSet AdjustmentType = "adjustment" // quantity is the new absolute stock
)

func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustIn, AdjustOut, AdjustSet:
		return true
	}
	return false
}

// Apply returns the stock that results from applying quantity to previous.
// The result may be negative for AdjustOut; callers must reject that.
func (t AdjustmentType) Apply(previous, quantity int) int {
	switch t {
	case AdjustIn:
		return previous + quantity
	case AdjustOut:
		return previous - quantity
	default:
		return quantity
	}
}

// StockHistory is one append-only movement record of a product's stock.
type StockHistory struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_stock_histories_product_time,priority:1;uniqueIndex:idx_stock_histories_product_seq,priority:1" json:"productId"`
	Sequence      int64          `gorm:"not null;uniqueIndex:idx_stock_histories_product_seq,priority:2" json:"sequence"` // 1-based, per product
	CompanyID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"companyId"`
	Type          AdjustmentType `gorm:"type:varchar(20);not null" json:"type"`
	Quantity      int            `gorm:"not null" json:"quantity"`
	PreviousStock int            `gorm:"not null" json:"previousStock"`
	NewStock      int            `gorm:"not null" json:"newStock"`
	Note          string         `gorm:"type:text" json:"note,omitempty"`
	TransactionID *uuid.UUID     `gorm:"type:uuid;index" json:"transactionId,omitempty"` // set for sale decrements
	CreatedBy     string         `json:"createdBy"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_stock_histories_product_time,priority:2" json:"timestamp"`
}

// Consistent reports whether NewStock follows from PreviousStock, Type and Quantity.
func (h *StockHistory) Consistent() bool {
	return h.PreviousStock >= 0 && h.NewStock >= 0 && h.Type.Apply(h.PreviousStock, h.Quantity) == h.NewStock
}

func (h *StockHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

func (h *StockHistory) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (h *StockHistory) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }
