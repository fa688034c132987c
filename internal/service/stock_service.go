package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/telemetry"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type AdjustStockRequest struct {
	Type     model.AdjustmentType `json:"type"`
	Quantity int                  `json:"quantity"`
	Note     string               `json:"note"`
}

type StockService interface {
	AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest, actor Actor) (*model.Product, error)
	GetStockHistory(ctx context.Context, productID uuid.UUID, limit int, before int64, actor Actor) ([]model.StockHistory, error)
}

type stockService struct {
	db          *gorm.DB
	productRepo repository.ProductRepository
	historyRepo repository.StockHistoryRepository
	publisher   Publisher
	inst        *telemetry.Instruments
}

func NewStockService(db *gorm.DB, pRepo repository.ProductRepository, hRepo repository.StockHistoryRepository, publisher Publisher, inst *telemetry.Instruments) StockService {
	if inst == nil {
		inst = telemetry.Noop()
	}
	return &stockService{
		db:          db,
		productRepo: pRepo,
		historyRepo: hRepo,
		publisher:   publisherOrNop(publisher),
		inst:        inst,
	}
}

// AdjustStock applies one movement under a row lock. The stock column and the
// history entry commit together or not at all.
func (s *stockService) AdjustStock(ctx context.Context, productID uuid.UUID, req AdjustStockRequest, actor Actor) (_ *model.Product, err error) {
	ctx, span := s.inst.Tracer.Start(ctx, "StockService.AdjustStock", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
		attribute.String("adjustment.type", string(req.Type)),
		attribute.Int("adjustment.quantity", req.Quantity),
	))
	defer func() {
		s.inst.RecordAdjustment(ctx, string(req.Type), outcomeOf(err))
		endSpan(span, err)
	}()

	if !req.Type.Valid() {
		return nil, ErrInvalidAdjustmentType
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	scope := actor.Scope(nil)
	var (
		updated model.Product
		entry   model.StockHistory
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.LockByID(tx, scope, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("lock product: %w", err)
		}

		previous := product.Stock
		next := req.Type.Apply(previous, req.Quantity)
		if next < 0 {
			return &InsufficientStockError{
				ProductID: product.ID,
				SKU:       product.SKU,
				Name:      product.Name,
				Available: previous,
				Requested: req.Quantity,
			}
		}

		ok, err := s.productRepo.SetStock(tx, product.ID, previous, next, actor.ID())
		if err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		if !ok {
			return fmt.Errorf("update stock: %s changed while locked", product.SKU)
		}

		entry = model.StockHistory{
			ProductID:     product.ID,
			CompanyID:     product.CompanyID,
			Type:          req.Type,
			Quantity:      req.Quantity,
			PreviousStock: previous,
			NewStock:      next,
			Note:          req.Note,
			CreatedBy:     actor.ID(),
		}
		if err := s.historyRepo.Append(tx, &entry); err != nil {
			return fmt.Errorf("append stock history: %w", err)
		}

		product.Stock = next
		product.UpdatedBy = actor.ID()
		updated = *product
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[stock] %s %s %d: %d -> %d by %s", updated.SKU, req.Type, req.Quantity, entry.PreviousStock, entry.NewStock, actor.ID())
	s.publisher.Publish(ws.Event{
		Type:      ws.EventStockUpdate,
		Action:    "stock_adjusted",
		CompanyID: updated.CompanyID,
		Data: map[string]interface{}{
			"id":            updated.ID,
			"sku":           updated.SKU,
			"name":          updated.Name,
			"type":          req.Type,
			"quantity":      req.Quantity,
			"previousStock": entry.PreviousStock,
			"newStock":      entry.NewStock,
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s adjusted stock of '%s' to %d", actor.Name, updated.Name, entry.NewStock),
	})
	return &updated, nil
}

// GetStockHistory returns newest-first entries. before, when positive, is the
// sequence the previous page ended at.
func (s *stockService) GetStockHistory(ctx context.Context, productID uuid.UUID, limit int, before int64, actor Actor) ([]model.StockHistory, error) {
	if _, err := s.productRepo.FindByID(ctx, actor.Scope(nil), productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	entries, err := s.historyRepo.FindRecent(ctx, productID, limit, before)
	if err != nil {
		return nil, fmt.Errorf("load stock history: %w", err)
	}
	return entries, nil
}
