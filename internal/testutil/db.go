// Package testutil provides an in-memory database and seed helpers for tests.
package testutil

import (
	"fmt"
	"testing"

	"go-pos-ws/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// A single connection serializes transactions the way row locks do on Postgres.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func SeedCompany(t *testing.T, db *gorm.DB, code string) *model.Company {
	t.Helper()
	company := &model.Company{Code: code, Name: "Company " + code, IsActive: true}
	require.NoError(t, db.Create(company).Error)
	return company
}

// ProductOpt tweaks the product built by SeedProduct.
type ProductOpt func(*model.Product)

func WithPrice(price string) ProductOpt {
	return func(p *model.Product) { p.Price = decimal.RequireFromString(price) }
}

func WithCost(cost string) ProductOpt {
	return func(p *model.Product) { p.Cost = decimal.RequireFromString(cost) }
}

func WithCategory(category string) ProductOpt {
	return func(p *model.Product) { p.Category = category }
}

func WithLowStockAlert(n int) ProductOpt {
	return func(p *model.Product) { p.LowStockAlert = n }
}

// SeedProduct inserts a product directly, bypassing the stock history.
func SeedProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, sku string, stock int, opts ...ProductOpt) *model.Product {
	t.Helper()
	product := &model.Product{
		CompanyID:     companyID,
		SKU:           sku,
		Barcode:       "BC-" + sku,
		Name:          "Product " + sku,
		Category:      "General",
		Price:         decimal.NewFromInt(10),
		Cost:          decimal.NewFromInt(6),
		Stock:         stock,
		LowStockAlert: model.DefaultLowStockAlert,
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// SeedRoles inserts the default privileges and roles with their grants.
func SeedRoles(t *testing.T, db *gorm.DB) map[string]*model.Role {
	t.Helper()
	privileges := make([]model.Privilege, len(model.DefaultPrivileges))
	copy(privileges, model.DefaultPrivileges)
	require.NoError(t, db.Create(&privileges).Error)

	byCode := make(map[string]model.Privilege, len(privileges))
	for _, p := range privileges {
		byCode[p.Code] = p
	}

	roles := make(map[string]*model.Role)
	for _, r := range model.DefaultRoles {
		role := r
		if role.Code == model.RoleAdmin {
			role.Privileges = privileges
		} else {
			for _, code := range model.DefaultRolePrivileges[role.Code] {
				role.Privileges = append(role.Privileges, byCode[code])
			}
		}
		require.NoError(t, db.Create(&role).Error)
		roles[role.Code] = &role
	}
	return roles
}

// SeedUser creates an active user holding the role's privileges.
func SeedUser(t *testing.T, db *gorm.DB, companyID *uuid.UUID, role *model.Role, email, password string) *model.User {
	t.Helper()
	user := &model.User{
		CompanyID:  companyID,
		Email:      email,
		FullName:   "User " + email,
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	require.NoError(t, user.SetPassword(password))
	require.NoError(t, db.Create(user).Error)
	user.Role = role
	return user
}
