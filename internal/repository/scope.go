package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope restricts a query to one company. A nil CompanyID spans all companies
// and is only handed out to ADMIN callers.
type Scope struct {
	CompanyID *uuid.UUID
}

func CompanyScope(id uuid.UUID) Scope {
	return Scope{CompanyID: &id}
}

func (s Scope) apply(db *gorm.DB, column string) *gorm.DB {
	if s.CompanyID == nil {
		return db
	}
	return db.Where(column+" = ?", *s.CompanyID)
}
