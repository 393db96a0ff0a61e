package conversation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory struct {
	machines     map[uint][]MachineRef
	breakdowns   map[uint]map[uint]*BreakdownInfo
	machinesErr  error
	breakdownErr error
}

func (f *fakeDirectory) MachinesByCompany(companyID uint) ([]MachineRef, error) {
	if f.machinesErr != nil {
		return nil, f.machinesErr
	}
	return f.machines[companyID], nil
}

func (f *fakeDirectory) BreakdownStatus(companyID, breakdownID uint) (*BreakdownInfo, error) {
	if f.breakdownErr != nil {
		return nil, f.breakdownErr
	}
	info, ok := f.breakdowns[companyID][breakdownID]
	if !ok {
		return nil, ErrNotFound
	}
	return info, nil
}

func twoMachineDir() *fakeDirectory {
	return &fakeDirectory{
		machines: map[uint][]MachineRef{
			1: {{ID: 10, Name: "Press A"}, {ID: 20, Name: "Press B"}},
		},
		breakdowns: map[uint]map[uint]*BreakdownInfo{
			1: {42: {ID: 42, MachineName: "Press A", Status: "open"}},
		},
	}
}

func TestEvaluate_IdleShowsMainMenu(t *testing.T) {
	result := Evaluate(twoMachineDir(), 1, StateIdle, Context{}, "hello")

	assert.Contains(t, result.Reply, "1. Report a breakdown")
	assert.Contains(t, result.Reply, "2. Check breakdown status")
	assert.Equal(t, StateAwaitingMenuChoice, result.NextState)
	assert.True(t, result.NextContext.IsZero())
	assert.Nil(t, result.Report)
}

func TestEvaluate_MenuChoice(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		wantState   State
		wantReply   string
		wantContext Context
	}{
		{
			name:        "report breakdown lists machines",
			input:       "1",
			wantState:   StateAwaitingMachineChoice,
			wantReply:   "1. Press A\n2. Press B",
			wantContext: Context{MachineIDs: []uint{10, 20}},
		},
		{
			name:      "check status prompts for id",
			input:     "2",
			wantState: StateAwaitingStatusID,
			wantReply: "breakdown ID",
		},
		{
			name:      "invalid option re-prompts",
			input:     "9",
			wantState: StateAwaitingMenuChoice,
			wantReply: "Invalid option",
		},
		{
			name:      "free text is invalid",
			input:     "report",
			wantState: StateAwaitingMenuChoice,
			wantReply: "Invalid option",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Evaluate(twoMachineDir(), 1, StateAwaitingMenuChoice, Context{}, tc.input)

			assert.Equal(t, tc.wantState, result.NextState)
			assert.Contains(t, result.Reply, tc.wantReply)
			assert.Equal(t, tc.wantContext, result.NextContext)
		})
	}
}

func TestEvaluate_MenuChoiceNoMachines(t *testing.T) {
	dir := &fakeDirectory{machines: map[uint][]MachineRef{}}

	result := Evaluate(dir, 1, StateAwaitingMenuChoice, Context{}, "1")

	assert.Contains(t, result.Reply, "No machines")
	assert.Equal(t, StateIdle, result.NextState)
	assert.True(t, result.NextContext.IsZero())
}

func TestEvaluate_MenuChoiceDirectoryError(t *testing.T) {
	dir := &fakeDirectory{machinesErr: errors.New("connection refused")}
	ctx := Context{}

	result := Evaluate(dir, 1, StateAwaitingMenuChoice, ctx, "1")

	assert.Equal(t, StateAwaitingMenuChoice, result.NextState)
	assert.Equal(t, ctx, result.NextContext)
	assert.Contains(t, result.Reply, "try again")
}

func TestEvaluate_MachineChoice(t *testing.T) {
	ctx := Context{MachineIDs: []uint{10, 20}}

	testCases := []struct {
		name      string
		input     string
		wantState State
		selected  uint
	}{
		{name: "first machine", input: "1", wantState: StateAwaitingIssueType, selected: 10},
		{name: "second machine", input: "2", wantState: StateAwaitingIssueType, selected: 20},
		{name: "leading whitespace trimmed", input: "  2  ", wantState: StateAwaitingIssueType, selected: 20},
		{name: "out of range high", input: "3", wantState: StateAwaitingMachineChoice},
		{name: "zero", input: "0", wantState: StateAwaitingMachineChoice},
		{name: "negative", input: "-1", wantState: StateAwaitingMachineChoice},
		{name: "non numeric", input: "press", wantState: StateAwaitingMachineChoice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Evaluate(twoMachineDir(), 1, StateAwaitingMachineChoice, ctx, tc.input)

			assert.Equal(t, tc.wantState, result.NextState)
			if tc.selected != 0 {
				assert.Equal(t, tc.selected, result.NextContext.SelectedMachineID)
				assert.Empty(t, result.NextContext.MachineIDs)
			} else {
				// Rejection leaves the context untouched
				assert.Equal(t, ctx, result.NextContext)
				assert.Contains(t, result.Reply, "Invalid machine number")
			}
		})
	}
}

func TestEvaluate_IssueType(t *testing.T) {
	ctx := Context{SelectedMachineID: 10}

	testCases := []struct {
		name      string
		input     string
		wantState State
		wantIssue string
	}{
		{name: "electrical", input: "1", wantState: StateAwaitingDescription, wantIssue: IssueElectrical},
		{name: "mechanical", input: "2", wantState: StateAwaitingDescription, wantIssue: IssueMechanical},
		{name: "invalid choice", input: "3", wantState: StateAwaitingIssueType},
		{name: "words rejected", input: "electrical", wantState: StateAwaitingIssueType},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Evaluate(twoMachineDir(), 1, StateAwaitingIssueType, ctx, tc.input)

			assert.Equal(t, tc.wantState, result.NextState)
			if tc.wantIssue != "" {
				assert.Equal(t, tc.wantIssue, result.NextContext.IssueType)
				assert.Equal(t, uint(10), result.NextContext.SelectedMachineID)
			} else {
				assert.Equal(t, ctx, result.NextContext)
			}
		})
	}
}

func TestEvaluate_DescriptionFinalizesReport(t *testing.T) {
	ctx := Context{SelectedMachineID: 10, IssueType: IssueMechanical}

	result := Evaluate(twoMachineDir(), 1, StateAwaitingDescription, ctx, "Motor smoking")

	require.NotNil(t, result.Report)
	assert.Equal(t, uint(10), result.Report.MachineID)
	assert.Equal(t, "Mechanical Issue: Motor smoking", result.Report.Description)
	assert.Equal(t, StateIdle, result.NextState)
	assert.True(t, result.NextContext.IsZero())
	assert.Empty(t, result.Reply)
}

func TestEvaluate_EmptyDescriptionRePrompts(t *testing.T) {
	ctx := Context{SelectedMachineID: 10, IssueType: IssueElectrical}

	result := Evaluate(twoMachineDir(), 1, StateAwaitingDescription, ctx, "   ")

	assert.Nil(t, result.Report)
	assert.Equal(t, StateAwaitingDescription, result.NextState)
	assert.Equal(t, ctx, result.NextContext)
}

func TestEvaluate_StatusLookup(t *testing.T) {
	testCases := []struct {
		name      string
		companyID uint
		input     string
		wantState State
		wantReply string
	}{
		{name: "found", companyID: 1, input: "42", wantState: StateIdle, wantReply: "Press A"},
		{name: "not found", companyID: 1, input: "999", wantState: StateIdle, wantReply: "not found"},
		{name: "other tenant looks identical", companyID: 2, input: "42", wantState: StateIdle, wantReply: "not found"},
		{name: "non numeric re-prompts", companyID: 1, input: "abc", wantState: StateAwaitingStatusID, wantReply: "Invalid ID"},
		{name: "negative re-prompts", companyID: 1, input: "-5", wantState: StateAwaitingStatusID, wantReply: "Invalid ID"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := Evaluate(twoMachineDir(), tc.companyID, StateAwaitingStatusID, Context{}, tc.input)

			assert.Equal(t, tc.wantState, result.NextState)
			assert.Contains(t, result.Reply, tc.wantReply)
			if tc.wantState == StateIdle {
				assert.True(t, result.NextContext.IsZero())
			}
		})
	}
}

func TestEvaluate_StatusLookupDirectoryError(t *testing.T) {
	dir := twoMachineDir()
	dir.breakdownErr = errors.New("connection refused")

	result := Evaluate(dir, 1, StateAwaitingStatusID, Context{}, "42")

	assert.Equal(t, StateAwaitingStatusID, result.NextState)
	assert.Contains(t, result.Reply, "try again")
}

func TestEvaluate_CorruptedStateRecovers(t *testing.T) {
	result := Evaluate(twoMachineDir(), 1, State("BOOKING_FLOW"), Context{SelectedMachineID: 10}, "hello")

	assert.Equal(t, StateAwaitingMenuChoice, result.NextState)
	assert.Contains(t, result.Reply, "start over")
	assert.Contains(t, result.Reply, "1. Report a breakdown")
	assert.True(t, result.NextContext.IsZero())
}

// Every transition into IDLE must clear the context completely.
func TestEvaluate_IdleTransitionsClearContext(t *testing.T) {
	dir := twoMachineDir()

	idleProducing := []struct {
		name  string
		state State
		ctx   Context
		input string
	}{
		{name: "no machines", state: StateAwaitingMenuChoice, ctx: Context{IssueType: IssueElectrical}, input: "1"},
		{name: "status found", state: StateAwaitingStatusID, ctx: Context{MachineIDs: []uint{10}}, input: "42"},
		{name: "status not found", state: StateAwaitingStatusID, ctx: Context{MachineIDs: []uint{10}}, input: "999"},
		{name: "description finalized", state: StateAwaitingDescription, ctx: Context{SelectedMachineID: 10, IssueType: IssueMechanical}, input: "broken belt"},
	}

	for _, tc := range idleProducing {
		t.Run(tc.name, func(t *testing.T) {
			d := dir
			if tc.name == "no machines" {
				d = &fakeDirectory{machines: map[uint][]MachineRef{}}
			}

			result := Evaluate(d, 1, tc.state, tc.ctx, tc.input)

			assert.Equal(t, StateIdle, result.NextState)
			assert.True(t, result.NextContext.IsZero())
		})
	}
}
