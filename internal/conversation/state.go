package conversation

import "encoding/json"

// State represents where a user is in the WhatsApp conversation flow.
// The string value is what gets persisted on the user record.
type State string

const (
	// StateIdle means no flow is in progress; any message opens the main menu.
	StateIdle State = "IDLE"
	// StateAwaitingMenuChoice means the main menu was presented.
	StateAwaitingMenuChoice State = "AWAITING_MENU_CHOICE"
	// StateAwaitingMachineChoice means a numbered machine list was presented.
	StateAwaitingMachineChoice State = "AWAITING_MACHINE_CHOICE"
	// StateAwaitingIssueType means the electrical/mechanical prompt was presented.
	StateAwaitingIssueType State = "AWAITING_ISSUE_TYPE"
	// StateAwaitingDescription means the bot is collecting the free-text fault description.
	StateAwaitingDescription State = "AWAITING_DESCRIPTION"
	// StateAwaitingStatusID means the bot asked for a breakdown ID to look up.
	StateAwaitingStatusID State = "AWAITING_STATUS_ID"
)

// Issue types for a breakdown report
const (
	IssueElectrical = "Electrical"
	IssueMechanical = "Mechanical"
)

// Valid reports whether s is a known conversation state. A stored value
// that fails this check is treated as corrupted and recovered from.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateAwaitingMenuChoice, StateAwaitingMachineChoice,
		StateAwaitingIssueType, StateAwaitingDescription, StateAwaitingStatusID:
		return true
	}
	return false
}

// Context carries the data collected so far in an in-flight flow. Each
// field is only meaningful in the state that produced it; every
// transition into IDLE returns a zero Context so nothing leaks into the
// next flow.
type Context struct {
	// MachineIDs is the ordered machine list behind the numbered menu,
	// stored 0-indexed (the user picks 1-based positions).
	MachineIDs []uint `json:"machine_ids,omitempty"`
	// SelectedMachineID is the machine chosen from MachineIDs.
	SelectedMachineID uint `json:"selected_machine_id,omitempty"`
	// IssueType is Electrical or Mechanical.
	IssueType string `json:"issue_type,omitempty"`
}

// IsZero reports whether the context holds no flow data.
func (c Context) IsZero() bool {
	return len(c.MachineIDs) == 0 && c.SelectedMachineID == 0 && c.IssueType == ""
}

// Encode serializes the context for storage on the user record.
// A zero context encodes to the empty string.
func (c Context) Encode() (string, error) {
	if c.IsZero() {
		return "", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeContext parses a stored context blob. Empty input yields a zero
// context; malformed input also yields a zero context so a corrupted
// blob degrades to a fresh flow instead of failing the message.
func DecodeContext(raw string) Context {
	if raw == "" {
		return Context{}
	}
	var c Context
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Context{}
	}
	return c
}
