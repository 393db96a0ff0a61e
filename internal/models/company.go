package models

import (
	"strings"

	"gorm.io/gorm"
)

// Company is the tenant root - machines, users and breakdowns all belong to one company
type Company struct {
	gorm.Model

	Name     string `json:"name" gorm:"uniqueIndex"`
	Industry string `json:"industry"`
	Phone    string `json:"phone"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
}

// BeforeCreate hook to normalize company data
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}

// CompanyRegistration is used for new company sign-up together with its first admin user
type CompanyRegistration struct {
	CompanyName string `json:"company_name" validate:"required"`
	Industry    string `json:"industry"`
	AdminName   string `json:"admin_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required"`
	Password    string `json:"password" validate:"required,min=8"`
}
