package models

import (
	"time"

	"gorm.io/gorm"
)

// MaintenanceTask status constants
const (
	MaintenanceStatusScheduled = "scheduled"
	MaintenanceStatusCompleted = "completed"
	MaintenanceStatusOverdue   = "overdue"
)

// MaintenanceTask is a recurring preventive-maintenance job for a machine
type MaintenanceTask struct {
	gorm.Model

	CompanyID     uint       `json:"company_id" gorm:"index"`
	MachineID     uint       `json:"machine_id" gorm:"index"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	FrequencyDays int        `json:"frequency_days"`
	NextDueAt     time.Time  `json:"next_due_at"`
	LastDoneAt    *time.Time `json:"last_done_at"`
	Status        string     `json:"status" gorm:"default:scheduled"`

	Machine Machine `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
}

// BeforeCreate hook to default the status
func (t *MaintenanceTask) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = MaintenanceStatusScheduled
	}
	return nil
}

// MarkCompleted records a completion and schedules the next occurrence
func (t *MaintenanceTask) MarkCompleted(now time.Time) {
	t.LastDoneAt = &now
	t.Status = MaintenanceStatusScheduled
	if t.FrequencyDays > 0 {
		t.NextDueAt = now.AddDate(0, 0, t.FrequencyDays)
	}
}

// MaintenanceTaskRequest is the create/update payload for maintenance tasks
type MaintenanceTaskRequest struct {
	MachineID     uint      `json:"machine_id" validate:"required"`
	Title         string    `json:"title" validate:"required"`
	Description   string    `json:"description"`
	FrequencyDays int       `json:"frequency_days" validate:"required,min=1"`
	NextDueAt     time.Time `json:"next_due_at" validate:"required"`
}
