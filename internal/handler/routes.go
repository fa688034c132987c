package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Routes holds everything the /api/v1 tree needs.
type Routes struct {
	Signer   *jwt.Signer
	UserRepo repository.UserRepository

	Auth        *AuthHandler
	Inventory   *InventoryHandler
	Transaction *TransactionHandler
	Report      *ReportHandler
	User        *UserHandler
	Role        *RoleHandler
	Company     *CompanyHandler
}

// Mount registers the API under /api/v1.
func (r Routes) Mount(app *fiber.App) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/auth/login", r.Auth.Login)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(r.Signer, r.UserRepo))
	need := middleware.RequirePrivilege

	protected.Get("/auth/me", r.Auth.Me)
	protected.Post("/auth/change-password", r.Auth.ChangePassword)

	// Dashboard and reports
	protected.Get("/dashboard/stats", need(model.PrivDashboardView), r.Report.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", need(model.PrivDashboardView), r.Report.GetStockMovement)
	protected.Get("/reports/sales", need(model.PrivReportView), r.Report.GetSalesReport)

	// Products and stock
	protected.Get("/products", need(model.PrivProductView), r.Inventory.GetProducts)
	protected.Get("/products/:id", need(model.PrivProductView), r.Inventory.GetProduct)
	protected.Post("/products", need(model.PrivProductCreate), r.Inventory.CreateProduct)
	protected.Put("/products/:id", need(model.PrivProductUpdate), r.Inventory.UpdateProduct)
	protected.Delete("/products/:id", need(model.PrivProductDelete), r.Inventory.DeleteProduct)
	protected.Post("/products/:id/adjust-stock", need(model.PrivStockAdjust), r.Inventory.AdjustStock)
	protected.Patch("/products/:id/adjust-stock", need(model.PrivStockAdjust), r.Inventory.AdjustStock)
	protected.Get("/products/:id/stock-history",
		middleware.RequireAnyPrivilege(model.PrivStockHistory, model.PrivStockAdjust), r.Inventory.GetStockHistory)

	// Transactions
	protected.Get("/transactions", need(model.PrivTransactionView), r.Transaction.GetTransactions)
	protected.Get("/transactions/:id", need(model.PrivTransactionView), r.Transaction.GetTransaction)
	protected.Post("/transactions", need(model.PrivTransactionCreate), r.Transaction.CreateTransaction)

	// User management
	protected.Get("/users", need(model.PrivUserView), r.User.GetUsers)
	protected.Get("/users/:id", need(model.PrivUserView), r.User.GetUser)
	protected.Post("/users", need(model.PrivUserCreate), r.User.CreateUser)
	protected.Put("/users/:id", need(model.PrivUserUpdate), r.User.UpdateUser)
	protected.Delete("/users/:id", need(model.PrivUserDelete), r.User.DeleteUser)
	protected.Put("/users/:id/privileges", need(model.PrivUserUpdate), r.User.UpdateUserPrivileges)

	protected.Get("/roles", r.Role.GetRoles)
	protected.Get("/privileges", r.Role.GetPrivileges)

	// Companies
	protected.Get("/companies", r.Company.GetCompanies)
	protected.Get("/companies/:id", r.Company.GetCompany)
	protected.Post("/companies", need(model.PrivCompanyManage), r.Company.CreateCompany)
}
