package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},

		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDeclined, false},
		{StatusConfirmed, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},

		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, true},
		{StatusInProgress, StatusConfirmed, false},

		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDeclined, StatusConfirmed, false},
		{StatusDeclined, StatusCancelled, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusDeclined.IsTerminal())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
}

func TestStatusBlocking(t *testing.T) {
	assert.True(t, StatusPending.IsBlocking())
	assert.True(t, StatusConfirmed.IsBlocking())
	assert.True(t, StatusInProgress.IsBlocking())

	assert.False(t, StatusCompleted.IsBlocking())
	assert.False(t, StatusCancelled.IsBlocking())
	assert.False(t, StatusDeclined.IsBlocking())

	assert.ElementsMatch(t,
		[]Status{StatusPending, StatusConfirmed, StatusInProgress},
		BlockingStatuses())
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("in_progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, status)

	_, err = ParseStatus("shipped")
	assert.Error(t, err)
}
