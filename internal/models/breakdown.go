package models

import (
	"time"

	"gorm.io/gorm"
)

// Breakdown status constants
const (
	BreakdownStatusOpen       = "open"
	BreakdownStatusInProgress = "in_progress"
	BreakdownStatusResolved   = "resolved"
)

// Breakdown is a reported equipment failure, scoped to the company that owns the machine
type Breakdown struct {
	gorm.Model

	CompanyID    uint       `json:"company_id" gorm:"index"`
	MachineID    uint       `json:"machine_id" gorm:"index"`
	ReportedByID uint       `json:"reported_by_id"`
	Description  string     `json:"description"`
	Status       string     `json:"status" gorm:"default:open"`
	ResolvedAt   *time.Time `json:"resolved_at"`

	Machine    Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	ReportedBy User    `json:"reported_by,omitempty" gorm:"foreignKey:ReportedByID"`
}

// BeforeCreate hook to default the status
func (b *Breakdown) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = BreakdownStatusOpen
	}
	return nil
}

// BreakdownStatusUpdate is the payload for moving a breakdown through its lifecycle
type BreakdownStatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=open in_progress resolved"`
}
