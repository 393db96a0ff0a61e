package services

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/nathanntongai/plantmaint-backend/internal/conversation"
	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

const notRegisteredReply = "❌ This number is not registered with PlantMaint Pro. Please ask your company admin to add you on the dashboard."

// WhatsAppService handles WhatsApp message processing: it resolves the
// sender, runs one conversation transition and persists the outcome.
type WhatsAppService struct {
	store storage.Store

	// One in-flight message per user: two near-simultaneous messages
	// from the same phone must not race on the same state record.
	userLocks sync.Map // phone -> *sync.Mutex
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(store storage.Store) *WhatsAppService {
	return &WhatsAppService{store: store}
}

// ProcessMessage handles one inbound message and returns the reply to
// send back. Every failure surfaces as a user-facing reply; callers
// never see an error they need to interpret.
func (w *WhatsAppService) ProcessMessage(from, message string) (string, error) {
	// Remove 'whatsapp:' prefix if present
	phone := strings.TrimPrefix(from, "whatsapp:")

	lock := w.lockFor(phone)
	lock.Lock()
	defer lock.Unlock()

	user, err := w.store.GetUserByPhone(phone)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// No user record to attach state to - nothing is persisted
			return notRegisteredReply, nil
		}
		log.Printf("❌ Failed to resolve sender %s: %v", phone, err)
		return conversation.TransientErrorReply(), nil
	}

	state := conversation.State(user.WhatsAppState)
	if user.WhatsAppState == "" {
		state = conversation.StateIdle
	}
	ctx := conversation.DecodeContext(user.WhatsAppContext)

	log.Printf("📱 Processing message from %s (state %s)", phone, state)

	result := conversation.Evaluate(storeDirectory{w.store}, user.CompanyID, state, ctx, message)

	// A finalized report: ledger append and state reset commit together.
	if result.Report != nil {
		breakdown := &models.Breakdown{
			CompanyID:    user.CompanyID,
			MachineID:    result.Report.MachineID,
			ReportedByID: user.ID,
			Description:  result.Report.Description,
			Status:       models.BreakdownStatusOpen,
		}

		created, err := w.store.AppendBreakdownAndResetConversation(breakdown, user.ID)
		if err != nil {
			// Nothing committed - the user can retry the same description
			log.Printf("❌ Failed to append breakdown for %s: %v", phone, err)
			return conversation.TransientErrorReply(), nil
		}

		log.Printf("✅ Breakdown #%d reported by %s", created.ID, phone)
		return conversation.ReportConfirmation(created.ID), nil
	}

	encoded, err := result.NextContext.Encode()
	if err != nil {
		log.Printf("❌ Failed to encode context for %s: %v", phone, err)
		return conversation.TransientErrorReply(), nil
	}

	if err := w.store.UpdateUserConversation(user.ID, string(result.NextState), encoded); err != nil {
		log.Printf("❌ Failed to persist state for %s: %v", phone, err)
		return conversation.TransientErrorReply(), nil
	}

	return result.Reply, nil
}

func (w *WhatsAppService) lockFor(phone string) *sync.Mutex {
	lock, _ := w.userLocks.LoadOrStore(phone, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// storeDirectory adapts the storage layer to the read-only lookups the
// conversation package needs.
type storeDirectory struct {
	store storage.Store
}

func (d storeDirectory) MachinesByCompany(companyID uint) ([]conversation.MachineRef, error) {
	machines, err := d.store.GetMachinesByCompany(companyID)
	if err != nil {
		return nil, err
	}

	refs := make([]conversation.MachineRef, 0, len(machines))
	for _, m := range machines {
		refs = append(refs, conversation.MachineRef{ID: m.ID, Name: m.Name})
	}
	return refs, nil
}

func (d storeDirectory) BreakdownStatus(companyID, breakdownID uint) (*conversation.BreakdownInfo, error) {
	breakdown, err := d.store.GetBreakdown(companyID, breakdownID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, conversation.ErrNotFound
		}
		return nil, err
	}

	machineName := breakdown.Machine.Name
	if machineName == "" {
		if machine, err := d.store.GetMachine(companyID, breakdown.MachineID); err == nil {
			machineName = machine.Name
		}
	}

	return &conversation.BreakdownInfo{
		ID:          breakdown.ID,
		MachineName: machineName,
		Status:      breakdown.Status,
	}, nil
}
