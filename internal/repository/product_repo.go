package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Scope
	Category string
	Search   string // matches name, SKU or barcode
	LowStock bool
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error)
	FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*model.Product, error)
	FindByBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.Product, error)
	UpdateDetails(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error

	// The methods below take the caller's transaction handle.
	CreateTx(tx *gorm.DB, product *model.Product) error
	LockByID(tx *gorm.DB, scope Scope, id uuid.UUID) (*model.Product, error)
	LockMany(tx *gorm.DB, scope Scope, ids []uuid.UUID) ([]model.Product, error)
	SetStock(tx *gorm.DB, id uuid.UUID, previous, next int, updatedBy string) (bool, error)
	DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int, updatedBy string) (bool, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepo) CreateTx(tx *gorm.DB, product *model.Product) error {
	return tx.Create(product).Error
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	var products []model.Product
	q := filter.apply(r.db.WithContext(ctx).Model(&model.Product{}), "company_id")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(name LIKE ? OR sku LIKE ? OR barcode = ?)", like, like, filter.Search)
	}
	if filter.LowStock {
		q = q.Where("stock <= low_stock_alert")
	}
	err := q.Order("name ASC").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	q := scope.apply(r.db.WithContext(ctx), "company_id")
	if err := q.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindBySKU(ctx context.Context, companyID uuid.UUID, sku string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "company_id = ? AND sku = ?", companyID, sku).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepo) FindByBarcode(ctx context.Context, companyID uuid.UUID, barcode string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, "company_id = ? AND barcode = ?", companyID, barcode).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateDetails writes the commercial attributes only. Stock is never touched here.
func (r *productRepo) UpdateDetails(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]interface{}{
			"sku":             product.SKU,
			"barcode":         product.Barcode,
			"name":            product.Name,
			"category":        product.Category,
			"price":           product.Price,
			"cost":            product.Cost,
			"low_stock_alert": product.LowStockAlert,
			"updated_by":      product.UpdatedBy,
		}).Error
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"deleted_by": deletedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// LockByID reads the product row with SELECT ... FOR UPDATE.
func (r *productRepo) LockByID(tx *gorm.DB, scope Scope, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	q := scope.apply(tx.Clauses(clause.Locking{Strength: "UPDATE"}), "company_id")
	if err := q.First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// LockMany locks a set of rows in primary key order so that concurrent
// multi-item commits acquire their locks in the same sequence.
func (r *productRepo) LockMany(tx *gorm.DB, scope Scope, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	q := scope.apply(tx.Clauses(clause.Locking{Strength: "UPDATE"}), "company_id")
	err := q.Where("id IN ?", ids).Order("id").Find(&products).Error
	return products, err
}

// SetStock is a compare-and-set: it only writes when stock still equals previous.
func (r *productRepo) SetStock(tx *gorm.DB, id uuid.UUID, previous, next int, updatedBy string) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock = ?", id, previous).
		Updates(map[string]interface{}{
			"stock":      next,
			"updated_by": updatedBy,
		})
	return res.RowsAffected == 1, res.Error
}

// DecrementStock subtracts quantity only if enough stock remains.
func (r *productRepo) DecrementStock(tx *gorm.DB, id uuid.UUID, quantity int, updatedBy string) (bool, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", quantity),
			"updated_by": updatedBy,
		})
	return res.RowsAffected == 1, res.Error
}
