package handler

import (
	"context"
	"errors"
	"log"

	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func ok(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func okMessage(c *fiber.Ctx, message string, data interface{}) error {
	body := fiber.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(body)
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"success": false, "message": message})
}

var (
	badRequest = []error{
		service.ErrValidation, service.ErrEmptyCart, service.ErrInvalidAdjustmentType,
		service.ErrInvalidQuantity, service.ErrInvalidPaymentMethod, service.ErrInvalidDiscount,
		service.ErrInsufficientStock, service.ErrInsufficientPayment, service.ErrCompanyRequired,
		service.ErrRoleNotFound, service.ErrWrongPassword,
	}
	notFound = []error{
		service.ErrProductNotFound, service.ErrTransactionNotFound,
		service.ErrUserNotFound, service.ErrCompanyNotFound,
	}
	conflict = []error{
		service.ErrDuplicateSKU, service.ErrDuplicateBarcode,
		service.ErrEmailExists, service.ErrCompanyExists,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// errorStatus maps a service error to its HTTP status and client message.
// Infrastructure failures never expose their text.
func errorStatus(err error) (int, string) {
	switch {
	case isAny(err, badRequest):
		return fiber.StatusBadRequest, err.Error()
	case isAny(err, notFound):
		return fiber.StatusNotFound, err.Error()
	case isAny(err, conflict):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "you are not allowed to perform this action"
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrUserInactive):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusServiceUnavailable, "service temporarily unavailable, please retry"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *fiber.Ctx, err error) error {
	status, message := errorStatus(err)
	if status >= fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return fail(c, status, message)
}

// actorFrom builds the service caller from the locals set by RequireAuth.
func actorFrom(c *fiber.Ctx) service.Actor {
	actor := service.Actor{UserID: middleware.UserID(c)}
	actor.Name, _ = c.Locals(middleware.LocalUserName).(string)
	actor.Email, _ = c.Locals(middleware.LocalUserEmail).(string)
	actor.RoleCode, _ = c.Locals(middleware.LocalRoleCode).(string)
	actor.CompanyID, _ = c.Locals(middleware.LocalCompanyID).(*uuid.UUID)
	return actor
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

// queryCompany reads the optional company_id filter; admins use it to narrow reads.
func queryCompany(c *fiber.Ctx) (*uuid.UUID, bool) {
	raw := c.Query("company_id")
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}
