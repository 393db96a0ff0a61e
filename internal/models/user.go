package models

import (
	"strings"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

// User represents a company member who can log in to the dashboard
// and talk to the WhatsApp bot
type User struct {
	gorm.Model

	CompanyID    uint   `json:"company_id" gorm:"index"`
	Name         string `json:"name"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	Phone        string `json:"phone" gorm:"uniqueIndex"` // WhatsApp number - unique
	PasswordHash string `json:"-"`
	Role         string `json:"role" gorm:"default:technician"`
	IsActive     bool   `json:"is_active" gorm:"default:true"`

	// Conversation state for the WhatsApp bot. State defaults to IDLE,
	// context is a JSON blob owned by the conversation package.
	WhatsAppState   string `json:"whatsapp_state" gorm:"column:whatsapp_state;default:IDLE"`
	WhatsAppContext string `json:"whatsapp_context" gorm:"column:whatsapp_context"`

	Company Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// BeforeCreate hook to normalize contact details
func (u *User) BeforeCreate(tx *gorm.DB) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	// Normalize phone number (ensure leading +)
	u.Phone = strings.ReplaceAll(u.Phone, " ", "")
	if u.Phone != "" && !strings.HasPrefix(u.Phone, "+") {
		u.Phone = "+" + u.Phone
	}

	if u.Role == "" {
		u.Role = RoleTechnician
	}

	return nil
}

// UserRegistration is used when an admin invites a new user into the company
type UserRegistration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"omitempty,oneof=admin technician"`
}

// LoginRequest is the dashboard login payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
