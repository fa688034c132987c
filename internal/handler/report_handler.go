package handler

import (
	"go-pos-ws/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	service service.ReportService
}

func NewReportHandler(s service.ReportService) *ReportHandler {
	return &ReportHandler{service: s}
}

// GetDashboardStats returns overview statistics
// GET /api/v1/dashboard/stats
func (h *ReportHandler) GetDashboardStats(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	stats, err := h.service.GetDashboardStats(c.UserContext(), companyID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, stats)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
// GET /api/v1/dashboard/stock-movement
func (h *ReportHandler) GetStockMovement(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days, companyID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, fiber.Map{"period": days, "data": data})
}

// GetSalesReport
// GET /api/v1/reports/sales?range=7d|1m|3m|6m|12m
func (h *ReportHandler) GetSalesReport(c *fiber.Ctx) error {
	companyID, valid := queryCompany(c)
	if !valid {
		return fail(c, fiber.StatusBadRequest, "Invalid company ID")
	}
	report, err := h.service.GetSalesReport(c.UserContext(), c.Query("range", "7d"), companyID, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, fiber.StatusOK, report)
}
