package service

import (
	"errors"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeReplayed = "replayed"
	outcomeError    = "error"
)

// isDomainError reports whether err is a business rule rejection rather than
// an infrastructure failure.
func isDomainError(err error) bool {
	for _, target := range []error{
		ErrValidation, ErrEmptyCart, ErrInvalidAdjustmentType, ErrInvalidQuantity,
		ErrInvalidPaymentMethod, ErrInvalidDiscount, ErrProductNotFound,
		ErrInsufficientStock, ErrInsufficientPayment, ErrCompanyRequired, ErrForbidden,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case isDomainError(err):
		return outcomeRejected
	default:
		return outcomeError
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
