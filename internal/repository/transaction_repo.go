package repository

import (
	"context"
	"time"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionFilter struct {
	Scope
	From          *time.Time
	To            *time.Time
	PaymentMethod model.PaymentMethod
	CashierID     *uuid.UUID
	Limit         int
	Offset        int
}

// TransactionRepository has no update or delete: transactions are append-only.
type TransactionRepository interface {
	Create(tx *gorm.DB, transaction *model.Transaction) error
	FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*model.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*model.Transaction, error)
	FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error)
	// Each streams every transaction in scope, oldest first, in batches.
	Each(ctx context.Context, scope Scope, fn func(*model.Transaction) error) error
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

func (r *transactionRepo) Create(tx *gorm.DB, transaction *model.Transaction) error {
	return tx.Create(transaction).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, scope Scope, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	q := scope.apply(r.db.WithContext(ctx).Preload("Items"), "company_id")
	if err := q.First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindByIdempotencyKey(ctx context.Context, companyID uuid.UUID, key string) (*model.Transaction, error) {
	var transaction model.Transaction
	err := r.db.WithContext(ctx).Preload("Items").
		First(&transaction, "company_id = ? AND idempotency_key = ?", companyID, key).Error
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) FindAll(ctx context.Context, filter TransactionFilter) ([]model.Transaction, int64, error) {
	q := filter.apply(r.db.WithContext(ctx).Model(&model.Transaction{}), "company_id")
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at < ?", *filter.To)
	}
	if filter.PaymentMethod != "" {
		q = q.Where("payment_method = ?", filter.PaymentMethod)
	}
	if filter.CashierID != nil {
		q = q.Where("cashier_id = ?", *filter.CashierID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var transactions []model.Transaction
	err := q.Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Find(&transactions).Error
	return transactions, count, err
}

func (r *transactionRepo) Each(ctx context.Context, scope Scope, fn func(*model.Transaction) error) error {
	const batchSize = 200
	for offset := 0; ; offset += batchSize {
		var batch []model.Transaction
		q := scope.apply(r.db.WithContext(ctx).Preload("Items"), "company_id")
		if err := q.Order("created_at ASC, id ASC").Limit(batchSize).Offset(offset).Find(&batch).Error; err != nil {
			return err
		}
		for i := range batch {
			if err := fn(&batch[i]); err != nil {
				return err
			}
		}
		if len(batch) < batchSize {
			return nil
		}
	}
}
