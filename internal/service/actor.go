package service

import (
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/internal/ws"

	"github.com/google/uuid"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	CompanyID *uuid.UUID
	RoleCode  string
}

func (a Actor) IsAdmin() bool {
	return a.RoleCode == model.RoleAdmin
}

// ID is the value written to audit columns.
func (a Actor) ID() string {
	if a.UserID == uuid.Nil {
		return "system"
	}
	return a.UserID.String()
}

// Scope limits reads to the actor's company. Admins read across companies
// unless they name one.
func (a Actor) Scope(requested *uuid.UUID) repository.Scope {
	if a.IsAdmin() {
		return repository.Scope{CompanyID: requested}
	}
	if a.CompanyID == nil {
		// Non-admin without a company sees nothing.
		nilCompany := uuid.Nil
		return repository.Scope{CompanyID: &nilCompany}
	}
	return repository.Scope{CompanyID: a.CompanyID}
}

// TargetCompany resolves the company a write belongs to.
func (a Actor) TargetCompany(requested *uuid.UUID) (uuid.UUID, error) {
	if a.IsAdmin() {
		if requested != nil && *requested != uuid.Nil {
			return *requested, nil
		}
		if a.CompanyID != nil {
			return *a.CompanyID, nil
		}
		return uuid.Nil, ErrCompanyRequired
	}
	if a.CompanyID == nil {
		return uuid.Nil, ErrCompanyRequired
	}
	if requested != nil && *requested != uuid.Nil && *requested != *a.CompanyID {
		return uuid.Nil, ErrForbidden
	}
	return *a.CompanyID, nil
}

func (a Actor) eventUser() *ws.EventUser {
	return &ws.EventUser{ID: a.ID(), Name: a.Name, Email: a.Email}
}

// Publisher receives domain events after the database commit.
type Publisher interface {
	Publish(evt ws.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(ws.Event) {}

func publisherOrNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
