package service

import (
	"context"
	"errors"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/testutil"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustStock_RoundTripKeepsChain(t *testing.T) {
	f := newFixture(t)
	svc := f.stockService()
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, f.company.ID, "BEV-001", 0)

	steps := []struct {
		req  AdjustStockRequest
		want int
	}{
		{AdjustStockRequest{Type: model.AdjustIn, Quantity: 10, Note: "delivery"}, 10},
		{AdjustStockRequest{Type: model.AdjustOut, Quantity: 4, Note: "damaged"}, 6},
		{AdjustStockRequest{Type: model.AdjustSet, Quantity: 20, Note: "count"}, 20},
		{AdjustStockRequest{Type: model.AdjustOut, Quantity: 20}, 0},
	}
	for _, step := range steps {
		updated, err := svc.AdjustStock(ctx, p.ID, step.req, f.cashier)
		require.NoError(t, err)
		assert.Equal(t, step.want, updated.Stock)
		assert.Equal(t, step.want, f.stockOf(t, p.ID))
	}

	chain, err := f.history.FindChain(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, chain, len(steps))
	assert.Equal(t, 0, chain[0].PreviousStock)
	assert.Equal(t, 6, chain[2].PreviousStock)
	assert.Equal(t, 20, chain[2].NewStock)
	assert.Equal(t, "delivery", chain[0].Note)
	assert.Equal(t, f.cashier.ID(), chain[0].CreatedBy)

	reloaded, err := f.products.FindByID(ctx, repository.Scope{}, p.ID)
	require.NoError(t, err)
	report := &AuditReport{}
	CheckStockChain(report, reloaded, chain)
	assert.True(t, report.OK(), "violations: %v", report.Violations)

	events := f.publisher.ofType(ws.EventStockUpdate)
	require.Len(t, events, len(steps))
	assert.Equal(t, f.company.ID, events[0].CompanyID)
}

func TestAdjustStock_OutBelowZero(t *testing.T) {
	f := newFixture(t)
	p := testutil.SeedProduct(t, f.db, f.company.ID, "BEV-001", 3)

	_, err := f.stockService().AdjustStock(context.Background(), p.ID, AdjustStockRequest{Type: model.AdjustOut, Quantity: 5}, f.cashier)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)

	assert.Equal(t, 3, f.stockOf(t, p.ID))
	assert.Equal(t, int64(0), f.count(t, &model.StockHistory{}))
	assert.Empty(t, f.publisher.ofType(ws.EventStockUpdate))
}

func TestAdjustStock_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	svc := f.stockService()
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, f.company.ID, "BEV-001", 3)

	tests := []struct {
		name string
		req  AdjustStockRequest
		want error
	}{
		{"unknown type", AdjustStockRequest{Type: "restock", Quantity: 1}, ErrInvalidAdjustmentType},
		{"zero quantity", AdjustStockRequest{Type: model.AdjustIn, Quantity: 0}, ErrInvalidQuantity},
		{"negative quantity", AdjustStockRequest{Type: model.AdjustOut, Quantity: -2}, ErrInvalidQuantity},
		{"zero absolute", AdjustStockRequest{Type: model.AdjustSet, Quantity: 0}, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustStock(ctx, p.ID, tt.req, f.cashier)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 3, f.stockOf(t, p.ID))
		})
	}
}

func TestAdjustStock_ProductNotFound(t *testing.T) {
	f := newFixture(t)
	svc := f.stockService()
	ctx := context.Background()

	_, err := svc.AdjustStock(ctx, uuid.New(), AdjustStockRequest{Type: model.AdjustIn, Quantity: 1}, f.cashier)
	assert.ErrorIs(t, err, ErrProductNotFound)

	other := testutil.SeedCompany(t, f.db, "OTHER")
	foreign := testutil.SeedProduct(t, f.db, other.ID, "BEV-001", 3)
	_, err = svc.AdjustStock(ctx, foreign.ID, AdjustStockRequest{Type: model.AdjustIn, Quantity: 1}, f.cashier)
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Equal(t, 3, f.stockOf(t, foreign.ID))

	_, err = svc.AdjustStock(ctx, foreign.ID, AdjustStockRequest{Type: model.AdjustIn, Quantity: 1}, adminActor())
	require.NoError(t, err)
	assert.Equal(t, 4, f.stockOf(t, foreign.ID))
}

func TestGetStockHistory_NewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := f.stockService()
	ctx := context.Background()
	p := testutil.SeedProduct(t, f.db, f.company.ID, "BEV-001", 0)

	for i := 0; i < 5; i++ {
		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{Type: model.AdjustIn, Quantity: i + 1}, f.cashier)
		require.NoError(t, err)
	}

	page, err := svc.GetStockHistory(ctx, p.ID, 2, 0, f.cashier)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 5, page[0].Quantity)
	assert.Equal(t, 4, page[1].Quantity)

	rest, err := svc.GetStockHistory(ctx, p.ID, 10, page[1].Sequence, f.cashier)
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, 1, rest[2].Quantity)

	_, err = svc.GetStockHistory(ctx, uuid.New(), 10, 0, f.cashier)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
