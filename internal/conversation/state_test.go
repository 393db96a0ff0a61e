package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateValid(t *testing.T) {
	valid := []State{
		StateIdle,
		StateAwaitingMenuChoice,
		StateAwaitingMachineChoice,
		StateAwaitingIssueType,
		StateAwaitingDescription,
		StateAwaitingStatusID,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}

	assert.False(t, State("").Valid())
	assert.False(t, State("idle").Valid())
	assert.False(t, State("BOOKING_FLOW").Valid())
}

func TestContextRoundTrip(t *testing.T) {
	original := Context{
		MachineIDs:        []uint{10, 20, 30},
		SelectedMachineID: 20,
		IssueType:         IssueElectrical,
	}

	encoded, err := original.Encode()
	require.NoError(t, err)

	decoded := DecodeContext(encoded)
	assert.Equal(t, original, decoded)
}

func TestContextEncode_ZeroIsEmptyString(t *testing.T) {
	encoded, err := Context{}.Encode()
	require.NoError(t, err)
	assert.Empty(t, encoded)
}

func TestDecodeContext_BadInput(t *testing.T) {
	assert.True(t, DecodeContext("").IsZero())
	assert.True(t, DecodeContext("not json at all").IsZero())
	assert.True(t, DecodeContext(`{"machine_ids": "oops"}`).IsZero())
}
