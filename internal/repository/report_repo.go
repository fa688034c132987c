package repository

import (
	"context"
	"sort"
	"time"

	"go-pos-ws/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats untuk overview stats
type DashboardStats struct {
	TotalProducts     int64           `json:"totalProducts"`
	LowStockCount     int64           `json:"lowStockCount"`
	InventoryCost     decimal.Decimal `json:"inventoryCost"`   // SUM(stock * cost)
	InventoryRetail   decimal.Decimal `json:"inventoryRetail"` // SUM(stock * price)
	SalesToday        decimal.Decimal `json:"salesToday"`
	TransactionsToday int64           `json:"transactionsToday"`
}

type SalesSummary struct {
	Count    int64           `json:"count"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	VAT      decimal.Decimal `json:"vat"`
	Total    decimal.Decimal `json:"total"`
}

type PaymentMethodSales struct {
	PaymentMethod string          `json:"paymentMethod"`
	Count         int64           `json:"count"`
	Total         decimal.Decimal `json:"total"`
}

type CategorySales struct {
	Category string          `json:"category"`
	Quantity int64           `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DailySales struct {
	Date  string          `json:"date"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// StockMovementData untuk chart data
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

// ReportRepository is read-only.
type ReportRepository interface {
	GetDashboardStats(ctx context.Context, scope Scope, dayStart time.Time) (*DashboardStats, error)
	GetSalesSummary(ctx context.Context, scope Scope, from, to time.Time) (*SalesSummary, error)
	GetSalesByPaymentMethod(ctx context.Context, scope Scope, from, to time.Time) ([]PaymentMethodSales, error)
	GetSalesByCategory(ctx context.Context, scope Scope, from, to time.Time) ([]CategorySales, error)
	GetDailySales(ctx context.Context, scope Scope, from, to time.Time, loc *time.Location) ([]DailySales, error)
	GetStockMovement(ctx context.Context, scope Scope, from, to time.Time, loc *time.Location) ([]StockMovementData, error)
}

type reportRepo struct {
	db *gorm.DB
}

func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db}
}

func (r *reportRepo) GetDashboardStats(ctx context.Context, scope Scope, dayStart time.Time) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	products := func() *gorm.DB { return scope.apply(db.Model(&model.Product{}), "company_id") }

	if err := products().Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := products().Where("stock <= low_stock_alert").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	var valuation struct {
		Cost   decimal.Decimal
		Retail decimal.Decimal
	}
	if err := products().
		Select("COALESCE(SUM(stock * cost), 0) AS cost, COALESCE(SUM(stock * price), 0) AS retail").
		Scan(&valuation).Error; err != nil {
		return nil, err
	}
	stats.InventoryCost = valuation.Cost.Round(2)
	stats.InventoryRetail = valuation.Retail.Round(2)

	var today struct {
		Count int64
		Total decimal.Decimal
	}
	if err := scope.apply(db.Model(&model.Transaction{}), "company_id").
		Where("created_at >= ?", dayStart).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Scan(&today).Error; err != nil {
		return nil, err
	}
	stats.TransactionsToday = today.Count
	stats.SalesToday = today.Total.Round(2)

	return &stats, nil
}

func (r *reportRepo) transactionsBetween(ctx context.Context, scope Scope, from, to time.Time) *gorm.DB {
	return scope.apply(r.db.WithContext(ctx).Model(&model.Transaction{}), "company_id").
		Where("created_at >= ? AND created_at < ?", from, to)
}

func (r *reportRepo) GetSalesSummary(ctx context.Context, scope Scope, from, to time.Time) (*SalesSummary, error) {
	var s SalesSummary
	err := r.transactionsBetween(ctx, scope, from, to).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(subtotal), 0) AS subtotal,
			COALESCE(SUM(discount), 0) AS discount,
			COALESCE(SUM(vat), 0) AS vat,
			COALESCE(SUM(total), 0) AS total`).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}
	s.Subtotal, s.Discount, s.VAT, s.Total = s.Subtotal.Round(2), s.Discount.Round(2), s.VAT.Round(2), s.Total.Round(2)
	return &s, nil
}

func (r *reportRepo) GetSalesByPaymentMethod(ctx context.Context, scope Scope, from, to time.Time) ([]PaymentMethodSales, error) {
	var rows []PaymentMethodSales
	err := r.transactionsBetween(ctx, scope, from, to).
		Select("payment_method, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Group("payment_method").
		Order("payment_method ASC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Total = rows[i].Total.Round(2)
	}
	return rows, err
}

func (r *reportRepo) GetSalesByCategory(ctx context.Context, scope Scope, from, to time.Time) ([]CategorySales, error) {
	var rows []CategorySales
	q := r.db.WithContext(ctx).Table("transaction_items AS ti").
		Joins("JOIN transactions AS t ON t.id = ti.transaction_id").
		Where("t.created_at >= ? AND t.created_at < ?", from, to)
	q = scope.apply(q, "t.company_id")
	err := q.Select("ti.product_category AS category, COALESCE(SUM(ti.quantity), 0) AS quantity, COALESCE(SUM(ti.subtotal), 0) AS revenue").
		Group("ti.product_category").
		Order("revenue DESC").
		Scan(&rows).Error
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

// GetDailySales buckets in Go so the day boundary follows loc on every dialect.
func (r *reportRepo) GetDailySales(ctx context.Context, scope Scope, from, to time.Time, loc *time.Location) ([]DailySales, error) {
	var rows []struct {
		CreatedAt time.Time
		Total     decimal.Decimal
	}
	if err := r.transactionsBetween(ctx, scope, from, to).
		Select("created_at, total").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	byDay := map[string]*DailySales{}
	for _, row := range rows {
		day := row.CreatedAt.In(loc).Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &DailySales{Date: day}
			byDay[day] = d
		}
		d.Count++
		d.Total = d.Total.Add(row.Total)
	}

	results := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		d.Total = d.Total.Round(2)
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}

func (r *reportRepo) GetStockMovement(ctx context.Context, scope Scope, from, to time.Time, loc *time.Location) ([]StockMovementData, error) {
	var rows []struct {
		CreatedAt time.Time
		Type      model.AdjustmentType
		Quantity  int
	}
	q := scope.apply(r.db.WithContext(ctx).Model(&model.StockHistory{}), "company_id").
		Where("created_at >= ? AND created_at < ?", from, to).
		Where("type IN ?", []model.AdjustmentType{model.AdjustIn, model.AdjustOut})
	if err := q.Select("created_at, type, quantity").Scan(&rows).Error; err != nil {
		return nil, err
	}

	byDay := map[string]*StockMovementData{}
	for _, row := range rows {
		day := row.CreatedAt.In(loc).Format("2006-01-02")
		d, ok := byDay[day]
		if !ok {
			d = &StockMovementData{Date: day}
			byDay[day] = d
		}
		if row.Type == model.AdjustIn {
			d.Inbound += row.Quantity
		} else {
			d.Outbound += row.Quantity
		}
	}

	results := make([]StockMovementData, 0, len(byDay))
	for _, d := range byDay {
		results = append(results, *d)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Date < results[j].Date })
	return results, nil
}
