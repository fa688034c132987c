package model

// Company is a tenant. Products, users and transactions belong to exactly one.
type Company struct {
	BaseModel
	Code     string `gorm:"type:varchar(30);uniqueIndex;not null" json:"code" validate:"required,max=30"`
	Name     string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Address  string `gorm:"type:text" json:"address,omitempty"`
	IsActive bool   `gorm:"default:true" json:"isActive"`
}
