package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to SyncStatus }{
		{SyncStatusPending, SyncStatusProcessing},
		{SyncStatusPendingNoMatch, SyncStatusProcessing},
		{SyncStatusProcessing, SyncStatusSuccess},
		{SyncStatusProcessing, SyncStatusFailed},
		{SyncStatusProcessing, SyncStatusPending},
		{SyncStatusProcessing, SyncStatusPendingNoMatch},
		{SyncStatusFailed, SyncStatusProcessing},
	}
	for _, tt := range allowed {
		assert.True(t, CanTransition(tt.from, tt.to), "%s -> %s should be allowed", tt.from, tt.to)
	}

	denied := []struct{ from, to SyncStatus }{
		{SyncStatusSuccess, SyncStatusProcessing},
		{SyncStatusSuccess, SyncStatusFailed},
		{SyncStatusPending, SyncStatusSuccess},
		{SyncStatusFailed, SyncStatusSuccess},
		{SyncStatusPending, SyncStatusFailed},
	}
	for _, tt := range denied {
		assert.False(t, CanTransition(tt.from, tt.to), "%s -> %s should be denied", tt.from, tt.to)
	}

	// Re-asserting the current status is never an error
	for _, s := range []SyncStatus{SyncStatusPending, SyncStatusProcessing, SyncStatusSuccess, SyncStatusFailed} {
		assert.True(t, CanTransition(s, s))
	}
}

func TestSyncStatusIsTerminal(t *testing.T) {
	assert.True(t, SyncStatusSuccess.IsTerminal())
	assert.False(t, SyncStatusFailed.IsTerminal())
	assert.False(t, SyncStatusProcessing.IsTerminal())
	assert.False(t, SyncStatusPending.IsTerminal())
}
