package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

type StockHistoryRepository interface {
	// Append must run inside the transaction that holds the product row lock.
	Append(tx *gorm.DB, entry *model.StockHistory) error
	// FindRecent returns newest-first entries. beforeSeq > 0 pages backwards.
	FindRecent(ctx context.Context, productID uuid.UUID, limit int, beforeSeq int64) ([]model.StockHistory, error)
	// FindChain returns the full history in append order.
	FindChain(ctx context.Context, productID uuid.UUID) ([]model.StockHistory, error)
}

type stockHistoryRepo struct {
	db *gorm.DB
}

func NewStockHistoryRepo(db *gorm.DB) StockHistoryRepository {
	return &stockHistoryRepo{db}
}

func (r *stockHistoryRepo) Append(tx *gorm.DB, entry *model.StockHistory) error {
	var last int64
	if err := tx.Model(&model.StockHistory{}).
		Where("product_id = ?", entry.ProductID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	entry.Sequence = last + 1
	return tx.Create(entry).Error
}

func (r *stockHistoryRepo) FindRecent(ctx context.Context, productID uuid.UUID, limit int, beforeSeq int64) ([]model.StockHistory, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var entries []model.StockHistory
	q := r.db.WithContext(ctx).Where("product_id = ?", productID)
	if beforeSeq > 0 {
		q = q.Where("sequence < ?", beforeSeq)
	}
	err := q.Order("sequence DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *stockHistoryRepo) FindChain(ctx context.Context, productID uuid.UUID) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("sequence ASC").
		Find(&entries).Error
	return entries, err
}
