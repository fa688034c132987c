package service

import (
	"errors"
	"fmt"
	"strings"

	"go-pos-ws/internal/model"
	"go-pos-ws/internal/repository"
	"go-pos-ws/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRequest struct {
	Code    string `json:"code" validate:"required,max=30"`
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address"`
}

type CompanyService interface {
	CreateCompany(req *CompanyRequest, actor Actor) (*model.Company, error)
	GetCompanies(actor Actor) ([]model.Company, error)
	GetCompany(id uuid.UUID, actor Actor) (*model.Company, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) CreateCompany(req *CompanyRequest, actor Actor) (*model.Company, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	if err := validator.First(req); err != nil {
		return nil, validationError(err)
	}
	if _, err := s.companyRepo.FindByCode(req.Code); err == nil {
		return nil, ErrCompanyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check company code: %w", err)
	}

	company := &model.Company{Code: req.Code, Name: req.Name, Address: req.Address, IsActive: true}
	company.CreatedBy = actor.ID()
	company.UpdatedBy = actor.ID()
	if err := s.companyRepo.Create(company); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return company, nil
}

func (s *companyService) GetCompanies(actor Actor) ([]model.Company, error) {
	if !actor.IsAdmin() {
		if actor.CompanyID == nil {
			return []model.Company{}, nil
		}
		company, err := s.GetCompany(*actor.CompanyID, actor)
		if err != nil {
			return nil, err
		}
		return []model.Company{*company}, nil
	}
	return s.companyRepo.FindAll()
}

func (s *companyService) GetCompany(id uuid.UUID, actor Actor) (*model.Company, error) {
	if !actor.IsAdmin() && (actor.CompanyID == nil || *actor.CompanyID != id) {
		return nil, ErrCompanyNotFound
	}
	company, err := s.companyRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return company, nil
}
