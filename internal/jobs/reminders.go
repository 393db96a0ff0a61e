package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/services"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

// MaintenanceReminderJob watches for preventive-maintenance tasks that
// have come due and notifies the company's technicians over WhatsApp.
type MaintenanceReminderJob struct {
	store         storage.Store
	twilioService *services.TwilioService
	interval      time.Duration
	stop          chan struct{}
}

// NewMaintenanceReminderJob creates the reminder job
func NewMaintenanceReminderJob(store storage.Store, twilioService *services.TwilioService) *MaintenanceReminderJob {
	return &MaintenanceReminderJob{
		store:         store,
		twilioService: twilioService,
		interval:      1 * time.Hour,
		stop:          make(chan struct{}),
	}
}

// Start launches the background loop
func (j *MaintenanceReminderJob) Start() {
	go j.run()
	log.Println("✅ Maintenance reminder job started")
}

// Stop terminates the background loop
func (j *MaintenanceReminderJob) Stop() {
	close(j.stop)
}

func (j *MaintenanceReminderJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// First sweep right away, then on the ticker
	j.sweep()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stop:
			return
		}
	}
}

// sweep finds due tasks, flags them overdue and sends the reminders.
// Flipping the status first means one reminder per task, not one per tick.
func (j *MaintenanceReminderJob) sweep() {
	tasks, err := j.store.GetDueMaintenanceTasks(time.Now())
	if err != nil {
		log.Printf("❌ Failed to fetch due maintenance tasks: %v", err)
		return
	}

	for _, task := range tasks {
		task.Status = models.MaintenanceStatusOverdue
		if err := j.store.UpdateMaintenanceTask(task); err != nil {
			log.Printf("❌ Failed to flag task %d overdue: %v", task.ID, err)
			continue
		}

		j.notifyCompany(task)
	}

	if len(tasks) > 0 {
		log.Printf("🔔 Sent reminders for %d due maintenance tasks", len(tasks))
	}
}

func (j *MaintenanceReminderJob) notifyCompany(task *models.MaintenanceTask) {
	if j.twilioService == nil {
		log.Printf("📤 Reminder for task %d not sent - Twilio not configured", task.ID)
		return
	}

	users, err := j.store.GetUsersByCompany(task.CompanyID)
	if err != nil {
		log.Printf("❌ Failed to fetch users for company %d: %v", task.CompanyID, err)
		return
	}

	machineName := task.Machine.Name
	if machineName == "" {
		if machine, err := j.store.GetMachine(task.CompanyID, task.MachineID); err == nil {
			machineName = machine.Name
		}
	}

	message := fmt.Sprintf("🔔 *Maintenance due!*\n\nTask: %s\nMachine: %s\nDue: %s\n\nPlease schedule it and mark it done on the dashboard.",
		task.Title, machineName, task.NextDueAt.Format("02 Jan 2006"))

	for _, user := range users {
		if !user.IsActive || user.Phone == "" {
			continue
		}
		if err := j.twilioService.SendWhatsAppMessage(user.Phone, message); err != nil {
			log.Printf("❌ Failed to send reminder to %s: %v", user.Phone, err)
		}
	}
}
