package repository

import (
	"context"
	"testing"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSale(companyID uuid.UUID, product *model.Product, qty int, method model.PaymentMethod, key *string) *model.Transaction {
	sub := product.Price.Mul(decimal.NewFromInt(int64(qty)))
	vat := sub.Mul(decimal.RequireFromString("0.12")).Round(2)
	return &model.Transaction{
		CompanyID:      companyID,
		IdempotencyKey: key,
		Subtotal:       sub,
		VAT:            vat,
		Total:          sub.Add(vat),
		PaymentMethod:  method,
		CashierID:      uuid.New(),
		CashierName:    "Cashier",
		Items: []model.TransactionItem{{
			ProductID: product.ID, ProductName: product.Name, ProductSKU: product.SKU,
			Quantity: qty, Price: product.Price, Subtotal: sub,
		}},
	}
}

func TestTransactionRepo_CreateAndFind(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepo(db)
	ctx := context.Background()
	a := testutil.SeedCompany(t, db, "A")
	b := testutil.SeedCompany(t, db, "B")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 10, testutil.WithPrice("4.50"))

	sale := newSale(a.ID, p, 2, model.PaymentCash, nil)
	require.NoError(t, repo.Create(db, sale))

	found, err := repo.FindByID(ctx, CompanyScope(a.ID), sale.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "BEV-001", found.Items[0].ProductSKU)
	assert.True(t, found.Items[0].Price.Equal(decimal.RequireFromString("4.50")))

	_, err = repo.FindByID(ctx, CompanyScope(b.ID), sale.ID)
	assert.Error(t, err)
}

func TestTransactionRepo_IdempotencyKeyUniquePerCompany(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepo(db)
	ctx := context.Background()
	a := testutil.SeedCompany(t, db, "A")
	b := testutil.SeedCompany(t, db, "B")
	pa := testutil.SeedProduct(t, db, a.ID, "BEV-001", 10)
	pb := testutil.SeedProduct(t, db, b.ID, "BEV-001", 10)

	key := "checkout-1"
	require.NoError(t, repo.Create(db, newSale(a.ID, pa, 1, model.PaymentCard, &key)))
	assert.Error(t, repo.Create(db, newSale(a.ID, pa, 1, model.PaymentCard, &key)))
	require.NoError(t, repo.Create(db, newSale(b.ID, pb, 1, model.PaymentCard, &key)))

	found, err := repo.FindByIdempotencyKey(ctx, a.ID, key)
	require.NoError(t, err)
	assert.Equal(t, a.ID, found.CompanyID)

	// Keyless sales never collide.
	require.NoError(t, repo.Create(db, newSale(a.ID, pa, 1, model.PaymentCard, nil)))
	require.NoError(t, repo.Create(db, newSale(a.ID, pa, 1, model.PaymentCard, nil)))
}

func TestTransactionRepo_FindAllNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepo(db)
	ctx := context.Background()
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 10)

	base := time.Now().Add(-time.Hour)
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		sale := newSale(a.ID, p, 1, model.PaymentCash, nil)
		sale.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(db, sale))
		ids = append(ids, sale.ID)
	}
	card := newSale(a.ID, p, 1, model.PaymentCard, nil)
	card.CreatedAt = base.Add(10 * time.Minute)
	require.NoError(t, repo.Create(db, card))

	list, count, err := repo.FindAll(ctx, TransactionFilter{Scope: CompanyScope(a.ID), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID)
	assert.Equal(t, ids[0], list[2].ID)

	paged, count, err := repo.FindAll(ctx, TransactionFilter{Scope: CompanyScope(a.ID), Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.Len(t, paged, 2)
}

func TestTransactionRepo_EachVisitsAllOldestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepo(db)
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 10)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		sale := newSale(a.ID, p, 1, model.PaymentQR, nil)
		sale.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(db, sale))
	}

	var seen []time.Time
	err := repo.Each(context.Background(), Scope{}, func(tr *model.Transaction) error {
		assert.Len(t, tr.Items, 1)
		seen = append(seen, tr.CreatedAt)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 5)
	for i := 1; i < len(seen); i++ {
		assert.True(t, !seen[i].Before(seen[i-1]))
	}
}

func TestTransactionRepo_Immutable(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTransactionRepo(db)
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 10)

	sale := newSale(a.ID, p, 1, model.PaymentCash, nil)
	require.NoError(t, repo.Create(db, sale))

	sale.CashierName = "someone else"
	assert.ErrorIs(t, db.Save(sale).Error, model.ErrImmutableRecord)
	assert.ErrorIs(t, db.Delete(sale).Error, model.ErrImmutableRecord)
}
