package storage

import (
	"errors"
	"time"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
)

// ErrNotFound is returned when a record does not exist within the
// requested company scope. Cross-tenant lookups are indistinguishable
// from nonexistent records.
var ErrNotFound = errors.New("record not found")

var storeInstance Store

// SetStore sets the global store instance (call from main.go)
func SetStore(s Store) {
	storeInstance = s
}

// GetStore returns the global store instance
func GetStore() Store {
	return storeInstance
}

// Store defines the interface for storage operations
type Store interface {
	// Company operations
	CreateCompany(company *models.Company) (*models.Company, error)
	GetCompany(id uint) (*models.Company, error)

	// User operations
	CreateUser(user *models.User) (*models.User, error)
	GetUser(companyID, id uint) (*models.User, error)
	GetUserByPhone(phone string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUsersByCompany(companyID uint) ([]*models.User, error)
	UpdateUserConversation(userID uint, state, context string) error

	// Machine operations
	CreateMachine(machine *models.Machine) (*models.Machine, error)
	GetMachine(companyID, id uint) (*models.Machine, error)
	GetMachinesByCompany(companyID uint) ([]*models.Machine, error)
	UpdateMachine(machine *models.Machine) error
	DeleteMachine(companyID, id uint) error

	// Breakdown operations
	GetBreakdown(companyID, id uint) (*models.Breakdown, error)
	GetBreakdownsByCompany(companyID uint) ([]*models.Breakdown, error)
	UpdateBreakdownStatus(companyID, id uint, status string) error
	// AppendBreakdownAndResetConversation creates the breakdown record
	// and resets the reporting user's conversation to IDLE as one atomic
	// unit. If the append fails the conversation state is untouched.
	AppendBreakdownAndResetConversation(breakdown *models.Breakdown, userID uint) (*models.Breakdown, error)

	// Maintenance operations
	CreateMaintenanceTask(task *models.MaintenanceTask) (*models.MaintenanceTask, error)
	GetMaintenanceTask(companyID, id uint) (*models.MaintenanceTask, error)
	GetMaintenanceTasksByCompany(companyID uint) ([]*models.MaintenanceTask, error)
	GetDueMaintenanceTasks(asOf time.Time) ([]*models.MaintenanceTask, error)
	UpdateMaintenanceTask(task *models.MaintenanceTask) error
}
