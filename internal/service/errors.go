package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrEmptyCart             = errors.New("transaction must contain at least one item")
	ErrInvalidAdjustmentType = errors.New("adjustment type must be one of: in, out, adjustment")
	ErrInvalidQuantity       = errors.New("quantity must be a positive integer")
	ErrInvalidPaymentMethod  = errors.New("payment method must be one of: Cash, QR Code, Card")
	ErrInvalidDiscount       = errors.New("discount must be between 0 and the subtotal")
	ErrProductNotFound       = errors.New("product not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrInsufficientPayment   = errors.New("insufficient payment")
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrDuplicateSKU          = errors.New("SKU already exists")
	ErrDuplicateBarcode      = errors.New("barcode already exists")
	ErrCompanyRequired       = errors.New("company is required")
	ErrCompanyNotFound       = errors.New("company not found")
	ErrCompanyExists         = errors.New("company code already exists")
	ErrForbidden             = errors.New("forbidden")
)

// ProductNotFoundError names the cart line that referenced a missing product.
type ProductNotFoundError struct {
	Index     int
	ProductID uuid.UUID
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: item %d (%s)", e.Index+1, e.ProductID)
}

func (e *ProductNotFoundError) Is(target error) bool { return target == ErrProductNotFound }

type InsufficientStockError struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	label := e.Name
	if label == "" {
		label = e.SKU
	}
	if e.Requested > 0 {
		return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", label, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for %s: available %d", label, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("insufficient payment: total %s, received %s", e.Total.StringFixed(2), e.Received.StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool { return target == ErrInsufficientPayment }

func validationError(err error) error {
	return fmt.Errorf("%w: %s", ErrValidation, err.Error())
}
