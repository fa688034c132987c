package repository

import (
	"context"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockHistoryRepo_AppendAssignsSequence(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStockHistoryRepo(db)
	ctx := context.Background()
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 0)
	other := testutil.SeedProduct(t, db, a.ID, "BEV-002", 0)

	stock := 0
	for i := 0; i < 5; i++ {
		entry := &model.StockHistory{
			ProductID: p.ID, CompanyID: a.ID, Type: model.AdjustIn, Quantity: 2,
			PreviousStock: stock, NewStock: stock + 2,
		}
		require.NoError(t, repo.Append(db, entry))
		assert.Equal(t, int64(i+1), entry.Sequence)
		stock += 2
	}

	first := &model.StockHistory{ProductID: other.ID, CompanyID: a.ID, Type: model.AdjustIn, Quantity: 1, NewStock: 1}
	require.NoError(t, repo.Append(db, first))
	assert.Equal(t, int64(1), first.Sequence, "sequences are per product")

	chain, err := repo.FindChain(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, chain, 5)
	for i := 1; i < len(chain); i++ {
		assert.Equal(t, chain[i-1].NewStock, chain[i].PreviousStock)
	}
}

func TestStockHistoryRepo_FindRecentPaging(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStockHistoryRepo(db)
	ctx := context.Background()
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 0)

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.Append(db, &model.StockHistory{
			ProductID: p.ID, CompanyID: a.ID, Type: model.AdjustIn, Quantity: 1,
			PreviousStock: i, NewStock: i + 1,
		}))
	}

	page, err := repo.FindRecent(ctx, p.ID, 3, 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, []int64{7, 6, 5}, sequences(page))

	next, err := repo.FindRecent(ctx, p.ID, 3, page[len(page)-1].Sequence)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 3, 2}, sequences(next))

	all, err := repo.FindRecent(ctx, p.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 7)
}

func TestStockHistoryRepo_RecordsAreImmutable(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStockHistoryRepo(db)
	a := testutil.SeedCompany(t, db, "A")
	p := testutil.SeedProduct(t, db, a.ID, "BEV-001", 0)

	entry := &model.StockHistory{ProductID: p.ID, CompanyID: a.ID, Type: model.AdjustIn, Quantity: 4, NewStock: 4}
	require.NoError(t, repo.Append(db, entry))

	entry.Quantity = 40
	assert.ErrorIs(t, db.Save(entry).Error, model.ErrImmutableRecord)
	assert.ErrorIs(t, db.Delete(entry).Error, model.ErrImmutableRecord)

	chain, err := repo.FindChain(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, 4, chain[0].Quantity)
}

func sequences(entries []model.StockHistory) []int64 {
	out := make([]int64, len(entries))
	for i, e := range entries {
		out[i] = e.Sequence
	}
	return out
}
