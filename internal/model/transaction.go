package model

import (
	"time"

	"go-pos-ws/internal/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "Cash"
	PaymentQR   PaymentMethod = "QR Code"
	PaymentCard PaymentMethod = "Card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentQR, PaymentCard:
		return true
	}
	return false
}

// Transaction is a committed sale. It is written once and never updated or deleted.
type Transaction struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_transactions_company_created,priority:1;uniqueIndex:idx_transactions_company_idem,priority:1" json:"companyId"`
	IdempotencyKey *string           `gorm:"type:varchar(100);uniqueIndex:idx_transactions_company_idem,priority:2" json:"idempotencyKey,omitempty"`
	Items          []TransactionItem `gorm:"foreignKey:TransactionID" json:"items"`
	Subtotal       decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	Discount       decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"discount"`
	VAT            decimal.Decimal   `gorm:"column:vat;type:decimal(12,2);not null" json:"vat"`
	Total          decimal.Decimal   `gorm:"type:decimal(12,2);not null" json:"total"`
	PaymentMethod  PaymentMethod     `gorm:"type:varchar(20);not null;index" json:"paymentMethod"`
	CashReceived   decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"cashReceived"`
	Change         decimal.Decimal   `gorm:"column:change_due;type:decimal(12,2);not null;default:0" json:"change"`
	CashierID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"cashier"`
	CashierName    string            `gorm:"type:varchar(255)" json:"cashierName"`
	CreatedAt      time.Time         `gorm:"not null;index:idx_transactions_company_created,priority:2" json:"createdAt"`
}

// TransactionItem is the snapshot of one sold line. ProductID is a weak
// reference; name, SKU, category and price are authoritative as recorded.
type TransactionItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product"`
	ProductName     string          `gorm:"type:varchar(255);not null" json:"productName"`
	ProductSKU      string          `gorm:"column:product_sku;type:varchar(20);not null" json:"productSku"`
	ProductCategory string          `gorm:"type:varchar(100)" json:"productCategory,omitempty"`
	Quantity        int             `gorm:"not null" json:"quantity"`
	Price           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

func (t *Transaction) Totals() money.Totals {
	return money.Totals{Subtotal: t.Subtotal, Discount: t.Discount, VAT: t.VAT, Total: t.Total}
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t *Transaction) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (t *Transaction) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }

func (i *TransactionItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *TransactionItem) BeforeUpdate(tx *gorm.DB) error { return ErrImmutableRecord }
func (i *TransactionItem) BeforeDelete(tx *gorm.DB) error { return ErrImmutableRecord }

// LineConsistent reports whether the stored subtotal equals price × quantity.
func (i *TransactionItem) LineConsistent() bool {
	return i.Quantity >= 1 && money.LineSubtotal(i.Price, i.Quantity).Equal(i.Subtotal)
}
