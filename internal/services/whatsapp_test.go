package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathanntongai/plantmaint-backend/internal/conversation"
	"github.com/nathanntongai/plantmaint-backend/internal/models"
	"github.com/nathanntongai/plantmaint-backend/internal/storage"
)

const testPhone = "+254712345678"

func seedStore(t *testing.T) (*storage.MemoryStore, *models.User) {
	t.Helper()

	store := storage.NewMemoryStore()

	company, err := store.CreateCompany(&models.Company{Name: "Acme Plastics"})
	require.NoError(t, err)

	user, err := store.CreateUser(&models.User{
		CompanyID: company.ID,
		Name:      "Joy Wanjiru",
		Email:     "joy@acme.example",
		Phone:     testPhone,
		Role:      models.RoleTechnician,
	})
	require.NoError(t, err)

	// Inserted out of name order on purpose - the menu must sort
	_, err = store.CreateMachine(&models.Machine{CompanyID: company.ID, Name: "Press B"})
	require.NoError(t, err)
	_, err = store.CreateMachine(&models.Machine{CompanyID: company.ID, Name: "Press A"})
	require.NoError(t, err)

	return store, user
}

func TestProcessMessage_UnknownSender(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewWhatsAppService(store)

	reply, err := svc.ProcessMessage("whatsapp:+15550009999", "hello")

	require.NoError(t, err)
	assert.Contains(t, reply, "not registered")
}

func TestProcessMessage_FullReportFlow(t *testing.T) {
	store, user := seedStore(t)
	svc := NewWhatsAppService(store)

	reply, err := svc.ProcessMessage("whatsapp:"+testPhone, "hello")
	require.NoError(t, err)
	assert.Contains(t, reply, "1. Report a breakdown")

	reply, err = svc.ProcessMessage(testPhone, "1")
	require.NoError(t, err)
	assert.Contains(t, reply, "1. Press A\n2. Press B")

	// Pick Press B (position 2 after sorting)
	reply, err = svc.ProcessMessage(testPhone, "2")
	require.NoError(t, err)
	assert.Contains(t, reply, "Electrical")
	assert.Contains(t, reply, "Mechanical")

	reply, err = svc.ProcessMessage(testPhone, "2")
	require.NoError(t, err)
	assert.Contains(t, reply, "describe")

	reply, err = svc.ProcessMessage(testPhone, "Motor smoking")
	require.NoError(t, err)
	assert.Contains(t, reply, "Breakdown reported")

	// Exactly one record, composed description, correct attribution
	breakdowns, err := store.GetBreakdownsByCompany(user.CompanyID)
	require.NoError(t, err)
	require.Len(t, breakdowns, 1)
	assert.Equal(t, "Mechanical Issue: Motor smoking", breakdowns[0].Description)
	assert.Equal(t, user.ID, breakdowns[0].ReportedByID)
	assert.Equal(t, models.BreakdownStatusOpen, breakdowns[0].Status)
	assert.Contains(t, reply, fmt.Sprintf("%d", breakdowns[0].ID))

	pressB, err := store.GetMachine(user.CompanyID, breakdowns[0].MachineID)
	require.NoError(t, err)
	assert.Equal(t, "Press B", pressB.Name)

	// Flow complete: back to IDLE with an empty context
	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateIdle), fresh.WhatsAppState)
	assert.Empty(t, fresh.WhatsAppContext)
}

func TestProcessMessage_StatusLookup(t *testing.T) {
	store, user := seedStore(t)
	svc := NewWhatsAppService(store)

	machines, err := store.GetMachinesByCompany(user.CompanyID)
	require.NoError(t, err)

	created, err := store.AppendBreakdownAndResetConversation(&models.Breakdown{
		CompanyID:    user.CompanyID,
		MachineID:    machines[0].ID,
		ReportedByID: user.ID,
		Description:  "Electrical Issue: Fuse blown",
	}, user.ID)
	require.NoError(t, err)

	_, err = svc.ProcessMessage(testPhone, "hi")
	require.NoError(t, err)

	_, err = svc.ProcessMessage(testPhone, "2")
	require.NoError(t, err)

	reply, err := svc.ProcessMessage(testPhone, fmt.Sprintf("%d", created.ID))
	require.NoError(t, err)
	assert.Contains(t, reply, "Press A")
	assert.Contains(t, reply, models.BreakdownStatusOpen)

	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateIdle), fresh.WhatsAppState)
	assert.Empty(t, fresh.WhatsAppContext)
}

func TestProcessMessage_StatusLookupUnknownID(t *testing.T) {
	store, _ := seedStore(t)
	svc := NewWhatsAppService(store)

	_, err := svc.ProcessMessage(testPhone, "hi")
	require.NoError(t, err)
	_, err = svc.ProcessMessage(testPhone, "2")
	require.NoError(t, err)

	reply, err := svc.ProcessMessage(testPhone, "999")
	require.NoError(t, err)
	assert.Contains(t, reply, "not found")

	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateIdle), fresh.WhatsAppState)
}

func TestProcessMessage_InvalidInputKeepsState(t *testing.T) {
	store, _ := seedStore(t)
	svc := NewWhatsAppService(store)

	_, err := svc.ProcessMessage(testPhone, "hi")
	require.NoError(t, err)

	reply, err := svc.ProcessMessage(testPhone, "banana")
	require.NoError(t, err)
	assert.Contains(t, reply, "Invalid option")

	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateAwaitingMenuChoice), fresh.WhatsAppState)
}

func TestProcessMessage_CorruptedStateRecovers(t *testing.T) {
	store, user := seedStore(t)
	svc := NewWhatsAppService(store)

	require.NoError(t, store.UpdateUserConversation(user.ID, "SOMETHING_ANCIENT", `{"selected_machine_id":10}`))

	reply, err := svc.ProcessMessage(testPhone, "hi")
	require.NoError(t, err)
	assert.Contains(t, reply, "start over")

	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateAwaitingMenuChoice), fresh.WhatsAppState)
	assert.Empty(t, fresh.WhatsAppContext)
}

// failingLedger simulates the breakdown append failing mid-flow.
type failingLedger struct {
	storage.Store
}

func (f *failingLedger) AppendBreakdownAndResetConversation(b *models.Breakdown, userID uint) (*models.Breakdown, error) {
	return nil, errors.New("database gone away")
}

func TestProcessMessage_FailedAppendLeavesStateForRetry(t *testing.T) {
	store, user := seedStore(t)

	broken := NewWhatsAppService(&failingLedger{Store: store})
	for _, msg := range []string{"hi", "1", "1", "1"} {
		_, err := broken.ProcessMessage(testPhone, msg)
		require.NoError(t, err)
	}

	reply, err := broken.ProcessMessage(testPhone, "Sparks from panel")
	require.NoError(t, err)
	assert.Contains(t, reply, "try again")

	// Nothing committed: still awaiting the description, context intact
	fresh, err := store.GetUserByPhone(testPhone)
	require.NoError(t, err)
	assert.Equal(t, string(conversation.StateAwaitingDescription), fresh.WhatsAppState)
	assert.NotEmpty(t, fresh.WhatsAppContext)

	breakdowns, err := store.GetBreakdownsByCompany(user.CompanyID)
	require.NoError(t, err)
	assert.Empty(t, breakdowns)

	// Same message against a healthy ledger completes the report
	healthy := NewWhatsAppService(store)
	reply, err = healthy.ProcessMessage(testPhone, "Sparks from panel")
	require.NoError(t, err)
	assert.Contains(t, reply, "Breakdown reported")

	breakdowns, err = store.GetBreakdownsByCompany(user.CompanyID)
	require.NoError(t, err)
	require.Len(t, breakdowns, 1)
	assert.Equal(t, "Electrical Issue: Sparks from panel", breakdowns[0].Description)
}
