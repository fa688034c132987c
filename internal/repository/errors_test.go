package repository

import (
	"errors"
	"fmt"
	"testing"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/testutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))

	db := testutil.NewTestDB(t)
	company := testutil.SeedCompany(t, db, "MAIN")
	testutil.SeedProduct(t, db, company.ID, "DUP-1", 1)

	err := db.Create(&model.Product{CompanyID: company.ID, SKU: "DUP-1", Barcode: "other", Name: "x"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}
