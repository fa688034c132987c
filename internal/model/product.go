package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultLowStockAlert = 10

// Product is the sellable unit. Stock moves only through stock adjustments
// and committed sales; both paths keep it non-negative.
type Product struct {
	BaseModel
	CompanyID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_company_sku;uniqueIndex:idx_products_company_barcode" json:"companyId"`
	SKU           string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_products_company_sku" json:"sku"`
	Barcode       string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_company_barcode" json:"barcode"`
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	Cost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	Stock         int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	LowStockAlert int             `gorm:"not null;default:10" json:"lowStockAlert"`
}

func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockAlert
}
