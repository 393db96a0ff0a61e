package storage

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nathanntongai/plantmaint-backend/internal/conversation"
	"github.com/nathanntongai/plantmaint-backend/internal/models"
)

// MemoryStore holds all data in memory, used for tests and local development
type MemoryStore struct {
	mu sync.RWMutex

	companies  map[uint]*models.Company
	users      map[uint]*models.User
	machines   map[uint]*models.Machine
	breakdowns map[uint]*models.Breakdown
	tasks      map[uint]*models.MaintenanceTask

	// Counters for ID generation
	companyCounter   uint
	userCounter      uint
	machineCounter   uint
	breakdownCounter uint
	taskCounter      uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		companies:  make(map[uint]*models.Company),
		users:      make(map[uint]*models.User),
		machines:   make(map[uint]*models.Machine),
		breakdowns: make(map[uint]*models.Breakdown),
		tasks:      make(map[uint]*models.MaintenanceTask),
	}
}

// Company operations

func (m *MemoryStore) CreateCompany(company *models.Company) (*models.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.companyCounter++
	company.ID = m.companyCounter
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()
	company.IsActive = true

	m.companies[company.ID] = company
	return company, nil
}

func (m *MemoryStore) GetCompany(id uint) (*models.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	company, exists := m.companies[id]
	if !exists {
		return nil, ErrNotFound
	}
	return company, nil
}

// User operations

func (m *MemoryStore) CreateUser(user *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.userCounter++
	user.ID = m.userCounter
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	user.IsActive = true
	if user.Role == "" {
		user.Role = models.RoleTechnician
	}
	if user.WhatsAppState == "" {
		user.WhatsAppState = string(conversation.StateIdle)
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryStore) GetUser(companyID, id uint) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists || user.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return user, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Phone == phone {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUserByEmail(email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetUsersByCompany(companyID uint) ([]*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var users []*models.User
	for _, user := range m.users {
		if user.CompanyID == companyID {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *MemoryStore) UpdateUserConversation(userID uint, state, context string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[userID]
	if !exists {
		return ErrNotFound
	}

	user.WhatsAppState = state
	user.WhatsAppContext = context
	user.UpdatedAt = time.Now()
	return nil
}

// Machine operations

func (m *MemoryStore) CreateMachine(machine *models.Machine) (*models.Machine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.machineCounter++
	machine.ID = m.machineCounter
	machine.CreatedAt = time.Now()
	machine.UpdatedAt = time.Now()
	if machine.Status == "" {
		machine.Status = models.MachineStatusOperational
	}

	m.machines[machine.ID] = machine
	return machine, nil
}

func (m *MemoryStore) GetMachine(companyID, id uint) (*models.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	machine, exists := m.machines[id]
	if !exists || machine.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return machine, nil
}

func (m *MemoryStore) GetMachinesByCompany(companyID uint) ([]*models.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var machines []*models.Machine
	for _, machine := range m.machines {
		if machine.CompanyID == companyID {
			machines = append(machines, machine)
		}
	}

	// Menu rendering relies on name order
	sort.Slice(machines, func(i, j int) bool {
		return machines[i].Name < machines[j].Name
	})
	return machines, nil
}

func (m *MemoryStore) UpdateMachine(machine *models.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.machines[machine.ID]
	if !exists || existing.CompanyID != machine.CompanyID {
		return ErrNotFound
	}

	machine.UpdatedAt = time.Now()
	m.machines[machine.ID] = machine
	return nil
}

func (m *MemoryStore) DeleteMachine(companyID, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	machine, exists := m.machines[id]
	if !exists || machine.CompanyID != companyID {
		return ErrNotFound
	}

	delete(m.machines, id)
	return nil
}

// Breakdown operations

func (m *MemoryStore) GetBreakdown(companyID, id uint) (*models.Breakdown, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	breakdown, exists := m.breakdowns[id]
	if !exists || breakdown.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return breakdown, nil
}

func (m *MemoryStore) GetBreakdownsByCompany(companyID uint) ([]*models.Breakdown, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var breakdowns []*models.Breakdown
	for _, breakdown := range m.breakdowns {
		if breakdown.CompanyID == companyID {
			breakdowns = append(breakdowns, breakdown)
		}
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		return breakdowns[i].ID > breakdowns[j].ID
	})
	return breakdowns, nil
}

func (m *MemoryStore) UpdateBreakdownStatus(companyID, id uint, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	breakdown, exists := m.breakdowns[id]
	if !exists || breakdown.CompanyID != companyID {
		return ErrNotFound
	}

	breakdown.Status = status
	breakdown.UpdatedAt = time.Now()
	if status == models.BreakdownStatusResolved {
		now := time.Now()
		breakdown.ResolvedAt = &now
	}
	return nil
}

func (m *MemoryStore) AppendBreakdownAndResetConversation(breakdown *models.Breakdown, userID uint) (*models.Breakdown, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, exists := m.users[userID]
	if !exists {
		return nil, ErrNotFound
	}

	m.breakdownCounter++
	breakdown.ID = m.breakdownCounter
	breakdown.CreatedAt = time.Now()
	breakdown.UpdatedAt = time.Now()
	if breakdown.Status == "" {
		breakdown.Status = models.BreakdownStatusOpen
	}
	m.breakdowns[breakdown.ID] = breakdown

	user.WhatsAppState = string(conversation.StateIdle)
	user.WhatsAppContext = ""
	user.UpdatedAt = time.Now()

	return breakdown, nil
}

// Maintenance operations

func (m *MemoryStore) CreateMaintenanceTask(task *models.MaintenanceTask) (*models.MaintenanceTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.taskCounter++
	task.ID = m.taskCounter
	task.CreatedAt = time.Now()
	task.UpdatedAt = time.Now()
	if task.Status == "" {
		task.Status = models.MaintenanceStatusScheduled
	}

	m.tasks[task.ID] = task
	return task, nil
}

func (m *MemoryStore) GetMaintenanceTask(companyID, id uint) (*models.MaintenanceTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, exists := m.tasks[id]
	if !exists || task.CompanyID != companyID {
		return nil, ErrNotFound
	}
	return task, nil
}

func (m *MemoryStore) GetMaintenanceTasksByCompany(companyID uint) ([]*models.MaintenanceTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*models.MaintenanceTask
	for _, task := range m.tasks {
		if task.CompanyID == companyID {
			tasks = append(tasks, task)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].NextDueAt.Before(tasks[j].NextDueAt)
	})
	return tasks, nil
}

func (m *MemoryStore) GetDueMaintenanceTasks(asOf time.Time) ([]*models.MaintenanceTask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var due []*models.MaintenanceTask
	for _, task := range m.tasks {
		if task.Status == models.MaintenanceStatusScheduled && !task.NextDueAt.After(asOf) {
			due = append(due, task)
		}
	}
	return due, nil
}

func (m *MemoryStore) UpdateMaintenanceTask(task *models.MaintenanceTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, exists := m.tasks[task.ID]
	if !exists || existing.CompanyID != task.CompanyID {
		return ErrNotFound
	}

	task.UpdatedAt = time.Now()
	m.tasks[task.ID] = task
	return nil
}
