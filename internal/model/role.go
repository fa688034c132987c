package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin   = "ADMIN"   // sees every company
	RoleManager = "MANAGER" // full access inside one company
	RoleCashier = "CASHIER" // checkout only
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{Code: RoleAdmin, Name: "Administrator", Description: "Full system access across companies"},
	{Code: RoleManager, Name: "Store Manager", Description: "Inventory, users and reports of one company"},
	{Code: RoleCashier, Name: "Cashier", Description: "Checkout and product lookup"},
}

// DefaultRolePrivileges lists what each seeded role is granted. ADMIN gets everything.
var DefaultRolePrivileges = map[string][]string{
	RoleManager: {
		PrivUserView, PrivUserCreate, PrivUserUpdate, PrivUserDelete,
		PrivProductView, PrivProductCreate, PrivProductUpdate, PrivProductDelete,
		PrivStockAdjust, PrivStockHistory,
		PrivTransactionView, PrivTransactionCreate,
		PrivDashboardView, PrivReportView,
	},
	RoleCashier: {
		PrivProductView, PrivTransactionCreate, PrivTransactionView,
	},
}
