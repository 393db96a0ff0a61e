package models

import (
	"strings"

	"gorm.io/gorm"
)

// Machine status values
const (
	MachineStatusOperational = "operational"
	MachineStatusDown        = "down"
	MachineStatusMaintenance = "maintenance"
)

// Machine represents a piece of plant equipment owned by a company
type Machine struct {
	gorm.Model

	CompanyID    uint   `json:"company_id" gorm:"index"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	SerialNumber string `json:"serial_number"`
	Status       string `json:"status" gorm:"default:operational"`
}

// BeforeCreate hook to normalize machine data
func (m *Machine) BeforeCreate(tx *gorm.DB) error {
	m.Name = strings.TrimSpace(m.Name)
	m.SerialNumber = strings.ToUpper(strings.ReplaceAll(m.SerialNumber, " ", ""))

	if m.Status == "" {
		m.Status = MachineStatusOperational
	}

	return nil
}

// MachineRequest is the create/update payload for machines
type MachineRequest struct {
	Name         string `json:"name" validate:"required"`
	Location     string `json:"location"`
	SerialNumber string `json:"serial_number"`
	Status       string `json:"status" validate:"omitempty,oneof=operational down maintenance"`
}
