package handler

import (
	"strconv"

	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	inventory service.InventoryService
	stock     service.StockService
}

func NewInventoryHandler(inventory service.InventoryService, stock service.StockService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, stock: stock}
}

// CreateProduct
// POST /api/v1/products
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	product, err := h.inventory.CreateProduct(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusCreated, product)
}

// UpdateProduct changes commercial attributes. Stock in the body is ignored.
// PUT /api/v1/products/:id
func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid product ID")
	}

	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	product, err := h.inventory.UpdateProduct(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, product)
}

// DELETE /api/v1/products/:id
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid product ID")
	}
	if err := h.inventory.DeleteProduct(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return okMessage(c, "Product deleted", nil)
}

// GetProducts supports ?category=, ?search=, ?low_stock=true and ?company_id= (admin).
// GET /api/v1/products
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}

	products, err := h.inventory.GetProducts(c.UserContext(), service.ProductQuery{
		CompanyID: companyID,
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		LowStock:  c.QueryBool("low_stock", false),
	}, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, products)
}

// GET /api/v1/products/:id
func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid product ID")
	}
	product, err := h.inventory.GetProduct(c.UserContext(), id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, product)
}

// AdjustStock
// POST|PATCH /api/v1/products/:id/adjust-stock
func (h *InventoryHandler) AdjustStock(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid product ID")
	}

	var req service.AdjustStockRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}

	product, err := h.stock.AdjustStock(c.UserContext(), id, req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, product)
}

// GetStockHistory returns entries newest first. ?before= is the sequence of
// the oldest entry already seen.
// GET /api/v1/products/:id/stock-history
func (h *InventoryHandler) GetStockHistory(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid product ID")
	}

	var before int64
	if raw := c.Query("before"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return fail(c, fiber.StatusBadRequest, "before must be a positive sequence number")
		}
		before = n
	}

	history, err := h.stock.GetStockHistory(c.UserContext(), id, c.QueryInt("limit", 0), before, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, history)
}
