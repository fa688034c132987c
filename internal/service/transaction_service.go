package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/money"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/telemetry"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const maxIdempotencyKeyLen = 100

// CommitItem is one cart line. Only ProductID and Quantity are authoritative;
// the other fields are what the client displayed.
type CommitItem struct {
	ProductID   uuid.UUID        `json:"product"`
	Quantity    int              `json:"quantity"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	ProductName string           `json:"productName,omitempty"`
	ProductSKU  string           `json:"productSku,omitempty"`
	Subtotal    *decimal.Decimal `json:"subtotal,omitempty"`
}

type CommitRequest struct {
	Items         []CommitItem        `json:"items"`
	PaymentMethod model.PaymentMethod `json:"paymentMethod"`
	Discount      decimal.Decimal     `json:"discount"`
	CashReceived  decimal.Decimal     `json:"cashReceived"`

	// Client-computed totals, logged when they disagree and otherwise ignored.
	Subtotal *decimal.Decimal `json:"subtotal,omitempty"`
	VAT      *decimal.Decimal `json:"vat,omitempty"`
	Total    *decimal.Decimal `json:"total,omitempty"`

	CompanyID      *uuid.UUID `json:"companyId,omitempty"` // admin only
	IdempotencyKey string     `json:"idempotencyKey,omitempty"`
}

type CommitResult struct {
	Transaction *model.Transaction
	Replayed    bool
}

type ListTransactionsQuery struct {
	CompanyID     *uuid.UUID
	From          *time.Time
	To            *time.Time
	PaymentMethod model.PaymentMethod
	CashierID     *uuid.UUID
	Limit         int
	Offset        int
}

type TransactionList struct {
	Items  []model.Transaction `json:"items"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

type TransactionService interface {
	Commit(ctx context.Context, req CommitRequest, actor Actor) (*CommitResult, error)
	List(ctx context.Context, q ListTransactionsQuery, actor Actor) (*TransactionList, error)
	Get(ctx context.Context, id uuid.UUID, actor Actor) (*model.Transaction, error)
}

type transactionService struct {
	db              *gorm.DB
	productRepo     repository.ProductRepository
	historyRepo     repository.StockHistoryRepository
	transactionRepo repository.TransactionRepository
	publisher       Publisher
	inst            *telemetry.Instruments
}

func NewTransactionService(
	db *gorm.DB,
	pRepo repository.ProductRepository,
	hRepo repository.StockHistoryRepository,
	tRepo repository.TransactionRepository,
	publisher Publisher,
	inst *telemetry.Instruments,
) TransactionService {
	if inst == nil {
		inst = telemetry.Noop()
	}
	return &transactionService{
		db:              db,
		productRepo:     pRepo,
		historyRepo:     hRepo,
		transactionRepo: tRepo,
		publisher:       publisherOrNop(publisher),
		inst:            inst,
	}
}

func validateCommit(req *CommitRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyCart
	}
	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return &ProductNotFoundError{Index: i}
		}
		if item.Quantity < 1 {
			return fmt.Errorf("item %d: %w", i+1, ErrInvalidQuantity)
		}
	}
	if !req.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if req.Discount.IsNegative() {
		return ErrInvalidDiscount
	}
	if req.CashReceived.IsNegative() {
		return validationError(errors.New("cashReceived must not be negative"))
	}
	if len(req.IdempotencyKey) > maxIdempotencyKeyLen {
		return validationError(fmt.Errorf("idempotency key longer than %d characters", maxIdempotencyKeyLen))
	}
	return nil
}

// Commit records a sale. Every line is decremented under a row lock, totals
// are recomputed from stored prices, and the whole sale commits atomically.
func (s *transactionService) Commit(ctx context.Context, req CommitRequest, actor Actor) (result *CommitResult, err error) {
	started := time.Now()
	ctx, span := s.inst.Tracer.Start(ctx, "TransactionService.Commit", trace.WithAttributes(
		attribute.Int("transaction.items", len(req.Items)),
		attribute.String("transaction.payment_method", string(req.PaymentMethod)),
	))
	defer func() {
		outcome := outcomeOf(err)
		if err == nil && result.Replayed {
			outcome = outcomeReplayed
		}
		s.inst.RecordCommit(ctx, outcome, time.Since(started))
		endSpan(span, err)
	}()

	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if err := validateCommit(&req); err != nil {
		return nil, err
	}
	companyID, err := actor.TargetCompany(req.CompanyID)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		if existing, err := s.transactionRepo.FindByIdempotencyKey(ctx, companyID, req.IdempotencyKey); err == nil {
			return &CommitResult{Transaction: existing, Replayed: true}, nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("check idempotency key: %w", err)
		}
	}

	var (
		sale    model.Transaction
		touched []model.Product
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		sale, touched, txErr = s.commitTx(tx, companyID, &req, actor)
		return txErr
	})
	if err != nil {
		if req.IdempotencyKey != "" && !isDomainError(err) {
			// A concurrent retry with the same key may have won the unique index.
			if winner, findErr := s.transactionRepo.FindByIdempotencyKey(ctx, companyID, req.IdempotencyKey); findErr == nil {
				return &CommitResult{Transaction: winner, Replayed: true}, nil
			}
		}
		return nil, err
	}

	var units int
	for _, item := range sale.Items {
		units += item.Quantity
	}
	s.inst.RecordUnitsSold(ctx, units)
	span.SetAttributes(attribute.String("transaction.id", sale.ID.String()))
	log.Printf("[transaction] %s committed: %d items, total %s (%s) by %s",
		sale.ID, len(sale.Items), sale.Total.StringFixed(2), sale.PaymentMethod, actor.ID())

	s.publishSale(&sale, touched, actor)
	return &CommitResult{Transaction: &sale}, nil
}

func (s *transactionService) commitTx(tx *gorm.DB, companyID uuid.UUID, req *CommitRequest, actor Actor) (model.Transaction, []model.Product, error) {
	transactionID := uuid.New()

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	locked, err := s.productRepo.LockMany(tx, repository.CompanyScope(companyID), ids)
	if err != nil {
		return model.Transaction{}, nil, fmt.Errorf("lock products: %w", err)
	}
	products := make(map[uuid.UUID]*model.Product, len(locked))
	for i := range locked {
		products[locked[i].ID] = &locked[i]
	}

	lines := make([]money.Line, 0, len(req.Items))
	items := make([]model.TransactionItem, 0, len(req.Items))
	for i, item := range req.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return model.Transaction{}, nil, &ProductNotFoundError{Index: i, ProductID: item.ProductID}
		}
		shortage := &InsufficientStockError{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Available: product.Stock,
			Requested: item.Quantity,
		}
		if item.Quantity > product.Stock {
			return model.Transaction{}, nil, shortage
		}

		decremented, err := s.productRepo.DecrementStock(tx, product.ID, item.Quantity, actor.ID())
		if err != nil {
			return model.Transaction{}, nil, fmt.Errorf("decrement %s: %w", product.SKU, err)
		}
		if !decremented {
			return model.Transaction{}, nil, shortage
		}

		previous := product.Stock
		product.Stock -= item.Quantity
		if err := s.historyRepo.Append(tx, &model.StockHistory{
			ProductID:     product.ID,
			CompanyID:     companyID,
			Type:          model.AdjustOut,
			Quantity:      item.Quantity,
			PreviousStock: previous,
			NewStock:      product.Stock,
			Note:          "sale " + transactionID.String(),
			TransactionID: &transactionID,
			CreatedBy:     actor.ID(),
		}); err != nil {
			return model.Transaction{}, nil, fmt.Errorf("append stock history: %w", err)
		}

		lines = append(lines, money.Line{Price: product.Price, Quantity: item.Quantity})
		items = append(items, model.TransactionItem{
			ProductID:       product.ID,
			ProductName:     product.Name,
			ProductSKU:      product.SKU,
			ProductCategory: product.Category,
			Quantity:        item.Quantity,
			Price:           money.Round2(product.Price),
			Subtotal:        money.LineSubtotal(product.Price, item.Quantity),
		})
		if item.Price != nil && !money.Round2(*item.Price).Equal(money.Round2(product.Price)) {
			log.Printf("[transaction] %s: client price %s differs from %s, using stored price",
				product.SKU, item.Price.StringFixed(2), product.Price.StringFixed(2))
		}
	}

	totals := money.Compute(lines, req.Discount)
	if totals.Discount.GreaterThan(totals.Subtotal) {
		return model.Transaction{}, nil, ErrInvalidDiscount
	}
	logTotalsMismatch(req, totals)

	cashReceived, change := decimal.Zero, decimal.Zero
	if req.PaymentMethod == model.PaymentCash {
		var ok bool
		change, ok = money.Change(totals.Total, req.CashReceived)
		if !ok {
			return model.Transaction{}, nil, &InsufficientPaymentError{Total: totals.Total, Received: money.Round2(req.CashReceived)}
		}
		cashReceived = money.Round2(req.CashReceived)
	}

	cashierName := actor.Name
	if cashierName == "" {
		cashierName = actor.Email
	}
	sale := model.Transaction{
		ID:            transactionID,
		CompanyID:     companyID,
		Items:         items,
		Subtotal:      totals.Subtotal,
		Discount:      totals.Discount,
		VAT:           totals.VAT,
		Total:         totals.Total,
		PaymentMethod: req.PaymentMethod,
		CashReceived:  cashReceived,
		Change:        change,
		CashierID:     actor.UserID,
		CashierName:   cashierName,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		sale.IdempotencyKey = &key
	}
	if err := s.transactionRepo.Create(tx, &sale); err != nil {
		return model.Transaction{}, nil, fmt.Errorf("insert transaction: %w", err)
	}

	touched := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		touched = append(touched, *products[id])
	}
	return sale, touched, nil
}

func logTotalsMismatch(req *CommitRequest, totals money.Totals) {
	check := func(name string, client *decimal.Decimal, server decimal.Decimal) {
		if client != nil && !money.Round2(*client).Equal(server) {
			log.Printf("[transaction] client %s %s differs from computed %s", name, client.StringFixed(2), server.StringFixed(2))
		}
	}
	check("subtotal", req.Subtotal, totals.Subtotal)
	check("vat", req.VAT, totals.VAT)
	check("total", req.Total, totals.Total)
}

func (s *transactionService) publishSale(sale *model.Transaction, touched []model.Product, actor Actor) {
	s.publisher.Publish(ws.Event{
		Type:      ws.EventTransactionCreated,
		CompanyID: sale.CompanyID,
		Data: map[string]interface{}{
			"id":            sale.ID,
			"total":         sale.Total,
			"paymentMethod": sale.PaymentMethod,
			"items":         len(sale.Items),
		},
		User:    actor.eventUser(),
		Message: fmt.Sprintf("%s recorded a sale of %s", sale.CashierName, sale.Total.StringFixed(2)),
	})
	for _, p := range touched {
		s.publisher.Publish(ws.Event{
			Type:      ws.EventStockUpdate,
			Action:    "sale",
			CompanyID: p.CompanyID,
			Data: map[string]interface{}{
				"id":       p.ID,
				"sku":      p.SKU,
				"name":     p.Name,
				"newStock": p.Stock,
				"lowStock": p.IsLowStock(),
			},
			User: actor.eventUser(),
		})
	}
}

func (s *transactionService) List(ctx context.Context, q ListTransactionsQuery, actor Actor) (*TransactionList, error) {
	if q.Limit <= 0 || q.Limit > 200 {
		q.Limit = 50
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.PaymentMethod != "" && !q.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	items, total, err := s.transactionRepo.FindAll(ctx, repository.TransactionFilter{
		Scope:         actor.Scope(q.CompanyID),
		From:          q.From,
		To:            q.To,
		PaymentMethod: q.PaymentMethod,
		CashierID:     q.CashierID,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if items == nil {
		items = []model.Transaction{}
	}
	return &TransactionList{Items: items, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *transactionService) Get(ctx context.Context, id uuid.UUID, actor Actor) (*model.Transaction, error) {
	t, err := s.transactionRepo.FindByID(ctx, actor.Scope(nil), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}
