package repository

import (
	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(company *model.Company) error
	FindAll() ([]model.Company, error)
	FindByID(id uuid.UUID) (*model.Company, error)
	FindByCode(code string) (*model.Company, error)
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *companyRepo) FindAll() ([]model.Company, error) {
	var companies []model.Company
	err := r.db.Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *companyRepo) FindByID(id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepo) FindByCode(code string) (*model.Company, error) {
	var company model.Company
	if err := r.db.First(&company, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
