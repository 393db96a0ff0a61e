package conversation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotFound is returned by Directory lookups when no record matches.
// A cross-tenant ID looks exactly like a nonexistent one on purpose.
var ErrNotFound = errors.New("record not found")

// MachineRef is the slice of a machine the menu needs.
type MachineRef struct {
	ID   uint
	Name string
}

// BreakdownInfo is what a status lookup returns.
type BreakdownInfo struct {
	ID          uint
	MachineName string
	Status      string
}

// Directory supplies the read-only lookups needed while evaluating a
// transition. All queries are scoped to the user's company.
type Directory interface {
	// MachinesByCompany returns the company's machines ordered by name ascending.
	MachinesByCompany(companyID uint) ([]MachineRef, error)
	// BreakdownStatus looks up a breakdown by ID within the company,
	// returning ErrNotFound when it does not exist there.
	BreakdownStatus(companyID, breakdownID uint) (*BreakdownInfo, error)
}

// Report is a finalized breakdown report. The caller must append it to
// the ledger and persist the IDLE reset as one atomic unit; if the
// write fails neither side may be committed.
type Report struct {
	MachineID   uint
	Description string
}

// Result is the outcome of evaluating one inbound message: the reply to
// send and the state/context to persist. When Report is set, Reply is
// empty and the caller renders the confirmation with ReportConfirmation
// once the ledger has assigned an ID.
type Result struct {
	Reply       string
	NextState   State
	NextContext Context
	Report      *Report
}

// Evaluate maps one inbound message to a reply and the next
// state/context. It performs no writes; the only I/O is read-only
// Directory queries. A failed query produces a transient apology and
// leaves state and context untouched so the same message can be retried.
func Evaluate(dir Directory, companyID uint, state State, ctx Context, input string) Result {
	msg := strings.TrimSpace(input)

	switch state {
	case StateIdle:
		return Result{Reply: mainMenu(), NextState: StateAwaitingMenuChoice}

	case StateAwaitingMenuChoice:
		return evalMenuChoice(dir, companyID, ctx, msg)

	case StateAwaitingMachineChoice:
		return evalMachineChoice(ctx, msg)

	case StateAwaitingIssueType:
		return evalIssueType(ctx, msg)

	case StateAwaitingDescription:
		return evalDescription(ctx, msg)

	case StateAwaitingStatusID:
		return evalStatusID(dir, companyID, ctx, msg)

	default:
		// Unrecognized stored state - recover by showing the menu again
		return Result{
			Reply:     "😕 Sorry, something went wrong with our conversation. Let's start over.\n\n" + mainMenu(),
			NextState: StateAwaitingMenuChoice,
		}
	}
}

func evalMenuChoice(dir Directory, companyID uint, ctx Context, msg string) Result {
	switch msg {
	case "1":
		machines, err := dir.MachinesByCompany(companyID)
		if err != nil {
			return transient(StateAwaitingMenuChoice, ctx)
		}
		if len(machines) == 0 {
			return Result{
				Reply:     "❌ No machines are registered for your company yet. Please ask your admin to add them on the dashboard.",
				NextState: StateIdle,
			}
		}

		var sb strings.Builder
		sb.WriteString("🏭 *Which machine has the problem?*\n\n")
		ids := make([]uint, 0, len(machines))
		for i, m := range machines {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, m.Name)
			ids = append(ids, m.ID)
		}
		sb.WriteString("\nReply with the machine number.")

		return Result{
			Reply:       sb.String(),
			NextState:   StateAwaitingMachineChoice,
			NextContext: Context{MachineIDs: ids},
		}

	case "2":
		return Result{
			Reply:     "🔎 Please enter the breakdown ID you want to check (e.g. 42).",
			NextState: StateAwaitingStatusID,
		}

	default:
		return Result{
			Reply:       "❌ Invalid option.\n\n" + mainMenu(),
			NextState:   StateAwaitingMenuChoice,
			NextContext: ctx,
		}
	}
}

func evalMachineChoice(ctx Context, msg string) Result {
	n, err := strconv.Atoi(msg)
	if err != nil || n < 1 || n > len(ctx.MachineIDs) {
		return Result{
			Reply:       fmt.Sprintf("❌ Invalid machine number. Please reply with a number between 1 and %d.", len(ctx.MachineIDs)),
			NextState:   StateAwaitingMachineChoice,
			NextContext: ctx,
		}
	}

	return Result{
		Reply:       "⚡ *What type of issue is it?*\n\n1. Electrical\n2. Mechanical",
		NextState:   StateAwaitingIssueType,
		NextContext: Context{SelectedMachineID: ctx.MachineIDs[n-1]},
	}
}

func evalIssueType(ctx Context, msg string) Result {
	var issueType string
	switch msg {
	case "1":
		issueType = IssueElectrical
	case "2":
		issueType = IssueMechanical
	default:
		return Result{
			Reply:       "❌ Invalid choice. Reply 1 for Electrical or 2 for Mechanical.",
			NextState:   StateAwaitingIssueType,
			NextContext: ctx,
		}
	}

	return Result{
		Reply:       "📝 Please describe the problem in a few words.",
		NextState:   StateAwaitingDescription,
		NextContext: Context{SelectedMachineID: ctx.SelectedMachineID, IssueType: issueType},
	}
}

func evalDescription(ctx Context, msg string) Result {
	if msg == "" {
		return Result{
			Reply:       "📝 Please describe the problem in a few words.",
			NextState:   StateAwaitingDescription,
			NextContext: ctx,
		}
	}

	return Result{
		NextState: StateIdle,
		Report: &Report{
			MachineID:   ctx.SelectedMachineID,
			Description: fmt.Sprintf("%s Issue: %s", ctx.IssueType, msg),
		},
	}
}

func evalStatusID(dir Directory, companyID uint, ctx Context, msg string) Result {
	id, err := strconv.Atoi(msg)
	if err != nil || id < 1 {
		return Result{
			Reply:       "❌ Invalid ID. Please enter a number (e.g. 42).",
			NextState:   StateAwaitingStatusID,
			NextContext: ctx,
		}
	}

	info, err := dir.BreakdownStatus(companyID, uint(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Result{
				Reply:     fmt.Sprintf("❌ Breakdown #%d was not found.", id),
				NextState: StateIdle,
			}
		}
		return transient(StateAwaitingStatusID, ctx)
	}

	return Result{
		Reply:     fmt.Sprintf("🔧 *Breakdown #%d*\n\nMachine: %s\nStatus: %s", info.ID, info.MachineName, info.Status),
		NextState: StateIdle,
	}
}

// ReportConfirmation renders the reply for a finalized breakdown report,
// once the ledger has assigned the record its ID.
func ReportConfirmation(breakdownID uint) string {
	return fmt.Sprintf("✅ *Breakdown reported!*\n\nYour reference ID is *%d*. Our maintenance team has been notified.\n\nSend any message to return to the menu.", breakdownID)
}

// TransientErrorReply is sent when a persistence operation fails and the
// user should retry the same message.
func TransientErrorReply() string {
	return "⚠️ Sorry, we couldn't process that right now. Please try again in a moment."
}

func transient(state State, ctx Context) Result {
	return Result{
		Reply:       TransientErrorReply(),
		NextState:   state,
		NextContext: ctx,
	}
}

func mainMenu() string {
	return "🔧 *PlantMaint Pro*\n\nWhat would you like to do?\n\n1. Report a breakdown\n2. Check breakdown status\n\nReply with 1 or 2."
}
