package service

import (
	"context"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_CleanAfterNormalOperations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := f.inventoryService()
	stock := f.stockService()
	sales := f.transactionService()

	bev, err := inv.CreateProduct(ctx, productRequest("BEV-001", 20), f.cashier)
	require.NoError(t, err)
	snk, err := inv.CreateProduct(ctx, productRequest("SNK-001", 0), f.cashier)
	require.NoError(t, err)

	_, err = stock.AdjustStock(ctx, snk.ID, AdjustStockRequest{Type: model.AdjustIn, Quantity: 12}, f.cashier)
	require.NoError(t, err)
	_, err = sales.Commit(ctx, CommitRequest{
		Items:         []CommitItem{{ProductID: bev.ID, Quantity: 3}, {ProductID: snk.ID, Quantity: 2}},
		PaymentMethod: model.PaymentCash,
		Discount:      dec("1.25"),
		CashReceived:  dec("100"),
	}, f.cashier)
	require.NoError(t, err)
	_, err = stock.AdjustStock(ctx, bev.ID, AdjustStockRequest{Type: model.AdjustSet, Quantity: 30}, f.cashier)
	require.NoError(t, err)

	report, err := NewAuditService(f.products, f.history, f.sales).Run(ctx, repository.Scope{})
	require.NoError(t, err)
	assert.True(t, report.OK(), "violations: %v", report.Violations)
	assert.Equal(t, 2, report.ProductsChecked)
	assert.Equal(t, 5, report.HistoryEntries)
	assert.Equal(t, 1, report.TransactionsChecked)
}

func TestAuditService_DetectsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Stock written without any history entry.
	testutil.SeedProduct(t, f.db, f.company.ID, "BEV-001", 7)

	report, err := NewAuditService(f.products, f.history, f.sales).Run(ctx, repository.CompanyScope(f.company.ID))
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, ViolationStockChain, report.Violations[0].Kind)
}

func TestCheckStockChain_BrokenLink(t *testing.T) {
	product := &model.Product{BaseModel: model.BaseModel{ID: uuid.New()}, SKU: "BEV-001", Stock: 4}
	chain := []model.StockHistory{
		{Sequence: 1, Type: model.AdjustIn, Quantity: 10, PreviousStock: 0, NewStock: 10},
		{Sequence: 2, Type: model.AdjustOut, Quantity: 3, PreviousStock: 9, NewStock: 6},
		{Sequence: 3, Type: model.AdjustOut, Quantity: 2, PreviousStock: 6, NewStock: 5},
	}
	report := &AuditReport{}
	CheckStockChain(report, product, chain)

	// link 2 starts at 9, entry 3 arithmetic is wrong, final 5 != 4
	assert.Len(t, report.Violations, 3)
}

func TestCheckTransactionMoney(t *testing.T) {
	good := &model.Transaction{
		ID:            uuid.New(),
		Subtotal:      dec("45.00"),
		VAT:           dec("5.40"),
		Total:         dec("50.40"),
		PaymentMethod: model.PaymentCash,
		CashReceived:  dec("60.00"),
		Change:        dec("9.60"),
		Items: []model.TransactionItem{
			{ProductSKU: "BEV-001", Quantity: 3, Price: dec("15.00"), Subtotal: dec("45.00")},
		},
	}
	report := &AuditReport{}
	CheckTransactionMoney(report, good)
	assert.True(t, report.OK(), "violations: %v", report.Violations)

	bad := *good
	bad.Total = dec("50.41")
	bad.Change = dec("9.60")
	report = &AuditReport{}
	CheckTransactionMoney(report, &bad)
	assert.False(t, report.OK())

	card := *good
	card.PaymentMethod = model.PaymentCard
	report = &AuditReport{}
	CheckTransactionMoney(report, &card)
	require.Len(t, report.Violations, 1)
	assert.Contains(t, report.Violations[0].Detail, "non-cash")
}
