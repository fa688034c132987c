package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView          = "user:view"
	PrivUserCreate        = "user:create"
	PrivUserUpdate        = "user:update"
	PrivUserDelete        = "user:delete"
	PrivProductView       = "product:view"
	PrivProductCreate     = "product:create"
	PrivProductUpdate     = "product:update"
	PrivProductDelete     = "product:delete"
	PrivStockAdjust       = "stock:adjust"
	PrivStockHistory      = "stock:history"
	PrivTransactionView   = "transaction:view"
	PrivTransactionCreate = "transaction:create"
	PrivDashboardView     = "dashboard:view"
	PrivReportView        = "report:view"
	PrivCompanyManage     = "company:manage"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivStockHistory, Name: "View Stock History"},
	{Code: PrivTransactionView, Name: "View Transaction"},
	{Code: PrivTransactionCreate, Name: "Create Transaction"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivCompanyManage, Name: "Manage Companies"},
}
