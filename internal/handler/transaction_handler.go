package handler

import (
	"time"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TransactionHandler struct {
	service service.TransactionService
}

func NewTransactionHandler(s service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateTransaction commits a sale. A replayed Idempotency-Key answers 200
// with the original transaction instead of 201.
// POST /api/v1/transactions
func (h *TransactionHandler) CreateTransaction(c *fiber.Ctx) error {
	var req service.CommitRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	if key := c.Get("Idempotency-Key"); key != "" {
		req.IdempotencyKey = key
	}

	result, err := h.service.Commit(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	if result.Replayed {
		return ok(c, fiber.StatusOK, result.Transaction)
	}
	return ok(c, fiber.StatusCreated, result.Transaction)
}

// GetTransactions supports ?from=&to= (RFC3339 or YYYY-MM-DD), ?payment_method=,
// ?cashier_id=, ?limit=, ?offset= and ?company_id= (admin).
// GET /api/v1/transactions
func (h *TransactionHandler) GetTransactions(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	q := service.ListTransactionsQuery{
		CompanyID:     companyID,
		PaymentMethod: model.PaymentMethod(c.Query("payment_method")),
		Limit:         c.QueryInt("limit", 50),
		Offset:        c.QueryInt("offset", 0),
	}

	var err error
	if q.From, err = parseTime(c.Query("from"), false); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid from date")
	}
	if q.To, err = parseTime(c.Query("to"), true); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid to date")
	}
	if raw := c.Query("cashier_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "Invalid cashier ID")
		}
		q.CashierID = &id
	}

	list, err := h.service.List(c.UserContext(), q, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, list)
}

// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid transaction ID")
	}
	t, err := h.service.Get(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, t)
}

// parseTime accepts RFC3339 or a bare date. A bare end date covers the whole day.
func parseTime(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &t, nil
}
