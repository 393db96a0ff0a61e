package storage

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nathanntongai/plantmaint-backend/internal/conversation"
	"github.com/nathanntongai/plantmaint-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Company operations

func (s *DatabaseStore) CreateCompany(company *models.Company) (*models.Company, error) {
	if err := s.db.Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

func (s *DatabaseStore) GetCompany(id uint) (*models.Company, error) {
	var company models.Company
	if err := s.db.First(&company, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &company, nil
}

// User operations

func (s *DatabaseStore) CreateUser(user *models.User) (*models.User, error) {
	if user.WhatsAppState == "" {
		user.WhatsAppState = string(conversation.StateIdle)
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DatabaseStore) GetUser(companyID, id uint) (*models.User, error) {
	var user models.User
	err := s.db.Where("company_id = ?", companyID).First(&user, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &user, nil
}

func (s *DatabaseStore) GetUsersByCompany(companyID uint) ([]*models.User, error) {
	var users []*models.User
	if err := s.db.Where("company_id = ?", companyID).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *DatabaseStore) UpdateUserConversation(userID uint, state, context string) error {
	result := s.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"whatsapp_state":   state,
		"whatsapp_context": context,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Machine operations

func (s *DatabaseStore) CreateMachine(machine *models.Machine) (*models.Machine, error) {
	if err := s.db.Create(machine).Error; err != nil {
		return nil, err
	}
	return machine, nil
}

func (s *DatabaseStore) GetMachine(companyID, id uint) (*models.Machine, error) {
	var machine models.Machine
	err := s.db.Where("company_id = ?", companyID).First(&machine, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &machine, nil
}

func (s *DatabaseStore) GetMachinesByCompany(companyID uint) ([]*models.Machine, error) {
	var machines []*models.Machine
	err := s.db.Where("company_id = ?", companyID).Order("name asc").Find(&machines).Error
	if err != nil {
		return nil, err
	}
	return machines, nil
}

func (s *DatabaseStore) UpdateMachine(machine *models.Machine) error {
	result := s.db.Model(&models.Machine{}).
		Where("id = ? AND company_id = ?", machine.ID, machine.CompanyID).
		Updates(map[string]interface{}{
			"name":          machine.Name,
			"location":      machine.Location,
			"serial_number": machine.SerialNumber,
			"status":        machine.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) DeleteMachine(companyID, id uint) error {
	result := s.db.Where("company_id = ?", companyID).Delete(&models.Machine{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Breakdown operations

func (s *DatabaseStore) GetBreakdown(companyID, id uint) (*models.Breakdown, error) {
	var breakdown models.Breakdown
	err := s.db.Preload("Machine").Where("company_id = ?", companyID).First(&breakdown, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &breakdown, nil
}

func (s *DatabaseStore) GetBreakdownsByCompany(companyID uint) ([]*models.Breakdown, error) {
	var breakdowns []*models.Breakdown
	err := s.db.Preload("Machine").
		Where("company_id = ?", companyID).
		Order("created_at desc").
		Find(&breakdowns).Error
	if err != nil {
		return nil, err
	}
	return breakdowns, nil
}

func (s *DatabaseStore) UpdateBreakdownStatus(companyID, id uint, status string) error {
	updates := map[string]interface{}{"status": status}
	if status == models.BreakdownStatusResolved {
		now := time.Now()
		updates["resolved_at"] = &now
	}

	result := s.db.Model(&models.Breakdown{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) AppendBreakdownAndResetConversation(breakdown *models.Breakdown, userID uint) (*models.Breakdown, error) {
	// Single transaction: the report and the conversation reset commit
	// together or not at all.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(breakdown).Error; err != nil {
			return err
		}

		result := tx.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
			"whatsapp_state":   string(conversation.StateIdle),
			"whatsapp_context": "",
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return breakdown, nil
}

// Maintenance operations

func (s *DatabaseStore) CreateMaintenanceTask(task *models.MaintenanceTask) (*models.MaintenanceTask, error) {
	if err := s.db.Create(task).Error; err != nil {
		return nil, err
	}
	return task, nil
}

func (s *DatabaseStore) GetMaintenanceTask(companyID, id uint) (*models.MaintenanceTask, error) {
	var task models.MaintenanceTask
	err := s.db.Preload("Machine").Where("company_id = ?", companyID).First(&task, id).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &task, nil
}

func (s *DatabaseStore) GetMaintenanceTasksByCompany(companyID uint) ([]*models.MaintenanceTask, error) {
	var tasks []*models.MaintenanceTask
	err := s.db.Preload("Machine").
		Where("company_id = ?", companyID).
		Order("next_due_at asc").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *DatabaseStore) GetDueMaintenanceTasks(asOf time.Time) ([]*models.MaintenanceTask, error) {
	var tasks []*models.MaintenanceTask
	err := s.db.Preload("Machine").
		Where("status = ? AND next_due_at <= ?", models.MaintenanceStatusScheduled, asOf).
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *DatabaseStore) UpdateMaintenanceTask(task *models.MaintenanceTask) error {
	result := s.db.Model(&models.MaintenanceTask{}).
		Where("id = ? AND company_id = ?", task.ID, task.CompanyID).
		Updates(map[string]interface{}{
			"title":          task.Title,
			"description":    task.Description,
			"frequency_days": task.FrequencyDays,
			"next_due_at":    task.NextDueAt,
			"last_done_at":   task.LastDoneAt,
			"status":         task.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
