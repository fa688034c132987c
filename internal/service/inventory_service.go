package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductRequest carries the editable attributes of a product. Stock is only
// read on create, as the opening balance.
type ProductRequest struct {
	CompanyID     *uuid.UUID      `json:"companyId,omitempty"`
	SKU           string          `json:"sku" validate:"required,sku"`
	Barcode       string          `json:"barcode" validate:"required,max=64"`
	Name          string          `json:"name" validate:"required,max=255"`
	Category      string          `json:"category" validate:"max=100"`
	Price         decimal.Decimal `json:"price" validate:"gte=0"`
	Cost          decimal.Decimal `json:"cost" validate:"gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	LowStockAlert *int            `json:"lowStockAlert,omitempty" validate:"omitempty,gte=0"`
}

type ProductQuery struct {
	CompanyID *uuid.UUID
	Category  string
	Search    string
	LowStock  bool
}

type InventoryService interface {
	CreateProduct(ctx context.Context, req ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest, actor Actor) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error
	GetProducts(ctx context.Context, q ProductQuery, actor Actor) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID, actor Actor) (*model.Product, error)
}

type inventoryService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	historyRepo repository.StockHistoryRepository
	publisher   Publisher
}

func NewInventoryService(db *gorm.DB, pRepo repository.ProductRepository, hRepo repository.StockHistoryRepository, publisher Publisher) InventoryService {
	return &inventoryService{
		db:          db,
		productRepo: pRepo,
		historyRepo: hRepo,
		publisher:   publisherOrNop(publisher),
	}
}

func (s *inventoryService) checkUnique(ctx context.Context, companyID uuid.UUID, self uuid.UUID, sku, barcode string) error {
	if existing, err := s.productRepo.FindBySKU(ctx, companyID, sku); err == nil && existing.ID != self {
		return ErrDuplicateSKU
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check sku: %w", err)
	}
	if existing, err := s.productRepo.FindByBarcode(ctx, companyID, barcode); err == nil && existing.ID != self {
		return ErrDuplicateBarcode
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check barcode: %w", err)
	}
	return nil
}

// duplicateProductError covers the race the pre-checks miss and SKUs still
// held by soft-deleted products.
func duplicateProductError(err error) error {
	if strings.Contains(err.Error(), "barcode") {
		return ErrDuplicateBarcode
	}
	return ErrDuplicateSKU
}

func (s *inventoryService) CreateProduct(ctx context.Context, req ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.First(&req); err != nil {
		return nil, validationError(err)
	}
	companyID, err := actor.TargetCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, companyID, uuid.Nil, req.SKU, req.Barcode); err != nil {
		return nil, err
	}

	product := &model.Product{
		CompanyID:     companyID,
		SKU:           req.SKU,
		Barcode:       req.Barcode,
		Name:          req.Name,
		Category:      req.Category,
		Price:         req.Price.Round(2),
		Cost:          req.Cost.Round(2),
		Stock:         req.Stock,
		LowStockAlert: model.DefaultLowStockAlert,
	}
	if req.LowStockAlert != nil {
		product.LowStockAlert = *req.LowStockAlert
	}
	product.CreatedBy = actor.ID()
	product.UpdatedBy = actor.ID()

	// The opening balance is recorded as the first history entry so the chain
	// always starts from zero.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.CreateTx(tx, product); err != nil {
			if repository.IsUniqueViolation(err) {
				return duplicateProductError(err)
			}
			return fmt.Errorf("create product: %w", err)
		}
		if product.Stock == 0 {
			return nil
		}
		return s.historyRepo.Append(tx, &model.StockHistory{
			ProductID:     product.ID,
			CompanyID:     product.CompanyID,
			Type:          model.AdjustIn,
			Quantity:      product.Stock,
			PreviousStock: 0,
			NewStock:      product.Stock,
			Note:          "opening stock",
			CreatedBy:     actor.ID(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishProduct("product_created", product, actor)
	return product, nil
}

// UpdateProduct changes commercial attributes. Stock in the request is ignored.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req ProductRequest, actor Actor) (*model.Product, error) {
	if err := validator.First(&req); err != nil {
		return nil, validationError(err)
	}
	existing, err := s.GetProduct(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.checkUnique(ctx, existing.CompanyID, existing.ID, req.SKU, req.Barcode); err != nil {
		return nil, err
	}

	existing.SKU = req.SKU
	existing.Barcode = req.Barcode
	existing.Name = req.Name
	existing.Category = req.Category
	existing.Price = req.Price.Round(2)
	existing.Cost = req.Cost.Round(2)
	if req.LowStockAlert != nil {
		existing.LowStockAlert = *req.LowStockAlert
	}
	existing.UpdatedBy = actor.ID()

	if err := s.productRepo.UpdateDetails(ctx, existing); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, duplicateProductError(err)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	updated, err := s.GetProduct(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	s.publishProduct("product_updated", updated, actor)
	return updated, nil
}

func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	product, err := s.GetProduct(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, product.ID, actor.ID()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.publishProduct("product_deleted", product, actor)
	return nil
}

func (s *inventoryService) GetProducts(ctx context.Context, q ProductQuery, actor Actor) ([]model.Product, error) {
	products, err := s.productRepo.FindAll(ctx, repository.ProductFilter{
		Scope:    actor.Scope(q.CompanyID),
		Category: q.Category,
		Search:   q.Search,
		LowStock: q.LowStock,
	})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID, actor Actor) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, actor.Scope(nil), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *inventoryService) publishProduct(action string, p *model.Product, actor Actor) {
	s.publisher.Publish(ws.Event{
		Type:      ws.EventProductChanged,
		Action:    action,
		CompanyID: p.CompanyID,
		Data: map[string]interface{}{
			"id":    p.ID,
			"sku":   p.SKU,
			"name":  p.Name,
			"stock": p.Stock,
			"price": p.Price,
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s %s '%s'", actor.Name, actionVerb(action), p.Name),
	})
}

func actionVerb(action string) string {
	switch action {
	case "product_created":
		return "created product"
	case "product_deleted":
		return "deleted product"
	default:
		return "updated product"
	}
}
