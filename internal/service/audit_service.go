package service

import (
	"context"
	"fmt"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/money"
	"go-pos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	ViolationStockChain       = "stock_chain"
	ViolationTransactionMoney = "transaction_money"
)

type Violation struct {
	Kind   string    `json:"kind"`
	RefID  uuid.UUID `json:"refId"`
	Detail string    `json:"detail"`
}

type AuditReport struct {
	ProductsChecked     int         `json:"productsChecked"`
	HistoryEntries      int         `json:"historyEntries"`
	TransactionsChecked int         `json:"transactionsChecked"`
	Violations          []Violation `json:"violations"`
}

func (r *AuditReport) OK() bool { return len(r.Violations) == 0 }

func (r *AuditReport) add(kind string, id uuid.UUID, format string, args ...interface{}) {
	r.Violations = append(r.Violations, Violation{Kind: kind, RefID: id, Detail: fmt.Sprintf(format, args...)})
}

// AuditService re-derives stock and money invariants from persisted records.
type AuditService interface {
	Run(ctx context.Context, scope repository.Scope) (*AuditReport, error)
}

type auditService struct {
	productRepo     repository.ProductRepository
	historyRepo     repository.StockHistoryRepository
	transactionRepo repository.TransactionRepository
}

func NewAuditService(pRepo repository.ProductRepository, hRepo repository.StockHistoryRepository, tRepo repository.TransactionRepository) AuditService {
	return &auditService{productRepo: pRepo, historyRepo: hRepo, transactionRepo: tRepo}
}

func (s *auditService) Run(ctx context.Context, scope repository.Scope) (*AuditReport, error) {
	report := &AuditReport{Violations: []Violation{}}

	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{Scope: scope})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	for i := range products {
		chain, err := s.historyRepo.FindChain(ctx, products[i].ID)
		if err != nil {
			return nil, fmt.Errorf("load history of %s: %w", products[i].SKU, err)
		}
		report.ProductsChecked++
		report.HistoryEntries += len(chain)
		CheckStockChain(report, &products[i], chain)
	}

	err = s.transactionRepo.Each(ctx, scope, func(t *model.Transaction) error {
		report.TransactionsChecked++
		CheckTransactionMoney(report, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return report, nil
}

// CheckStockChain verifies that chain, in append order, starts at zero, links
// each entry to the previous one and ends at the product's current stock.
func CheckStockChain(report *AuditReport, product *model.Product, chain []model.StockHistory) {
	if len(chain) == 0 {
		if product.Stock != 0 {
			report.add(ViolationStockChain, product.ID, "%s: stock %d has no history", product.SKU, product.Stock)
		}
		return
	}

	previous := 0
	for i := range chain {
		entry := &chain[i]
		if entry.Sequence != int64(i+1) {
			report.add(ViolationStockChain, product.ID, "%s: entry %d has sequence %d", product.SKU, i+1, entry.Sequence)
		}
		if entry.PreviousStock != previous {
			report.add(ViolationStockChain, product.ID, "%s: entry %d starts at %d, expected %d", product.SKU, entry.Sequence, entry.PreviousStock, previous)
		}
		if !entry.Consistent() {
			report.add(ViolationStockChain, product.ID, "%s: entry %d %s %d does not take %d to %d",
				product.SKU, entry.Sequence, entry.Type, entry.Quantity, entry.PreviousStock, entry.NewStock)
		}
		previous = entry.NewStock
	}
	if previous != product.Stock {
		report.add(ViolationStockChain, product.ID, "%s: history ends at %d but stock is %d", product.SKU, previous, product.Stock)
	}
}

// CheckTransactionMoney verifies line, total and cash invariants of t.
func CheckTransactionMoney(report *AuditReport, t *model.Transaction) {
	if len(t.Items) == 0 {
		report.add(ViolationTransactionMoney, t.ID, "no line items")
	}
	sum := decimal.Zero
	for _, item := range t.Items {
		if !item.LineConsistent() {
			report.add(ViolationTransactionMoney, t.ID, "line %s: %d × %s != %s",
				item.ProductSKU, item.Quantity, item.Price.StringFixed(2), item.Subtotal.StringFixed(2))
		}
		sum = sum.Add(item.Subtotal)
	}
	if !money.Round2(sum).Equal(t.Subtotal) {
		report.add(ViolationTransactionMoney, t.ID, "subtotal %s != sum of lines %s", t.Subtotal.StringFixed(2), sum.StringFixed(2))
	}
	if t.Discount.IsNegative() || t.Discount.GreaterThan(t.Subtotal) {
		report.add(ViolationTransactionMoney, t.ID, "discount %s outside [0, subtotal]", t.Discount.StringFixed(2))
	}
	if err := money.Verify(t.Totals()); err != nil {
		report.add(ViolationTransactionMoney, t.ID, "%v", err)
	}

	if t.PaymentMethod == model.PaymentCash {
		if t.CashReceived.LessThan(t.Total) {
			report.add(ViolationTransactionMoney, t.ID, "cash %s below total %s", t.CashReceived.StringFixed(2), t.Total.StringFixed(2))
		}
		if !t.Change.Equal(t.CashReceived.Sub(t.Total)) {
			report.add(ViolationTransactionMoney, t.ID, "change %s != %s − %s", t.Change.StringFixed(2), t.CashReceived.StringFixed(2), t.Total.StringFixed(2))
		}
	} else if !t.CashReceived.IsZero() || !t.Change.IsZero() {
		report.add(ViolationTransactionMoney, t.ID, "non-cash sale carries cash %s / change %s", t.CashReceived.StringFixed(2), t.Change.StringFixed(2))
	}
}
