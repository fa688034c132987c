package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	service service.CompanyService
}

func NewCompanyHandler(s service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: s}
}

// POST /api/v1/companies
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var req service.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid JSON")
	}
	company, err := h.service.CreateCompany(&req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusCreated, company)
}

// GET /api/v1/companies
func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	companies, err := h.service.GetCompanies(actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, companies)
}

// GET /api/v1/companies/:id
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	id, valid := paramUUID(c, "id")
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	company, err := h.service.GetCompany(id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, company)
}
