package allocator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestAllocator() (*Allocator, *MemoryStore) {
	store := NewMemoryStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(store, logger), store
}

func TestBaseCode(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Áo Thun Nam", "ATN"},
		{"Đèn bàn học", "DBH"},
		{"Red Shirt", "RS"},
		{"shirt", "S"},
		{"One Two Three Four Five", "OTTF"},
		{"", "PRD"},
		{"!!!", "PRD"},
		{"7up Soda", "7S"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, BaseCode(tt.name), "name %q", tt.name)
	}
}

func TestPropose_SkipsScopeCodes(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	code, err := alloc.Propose(ctx, "Red Shirt", nil)
	assert.NoError(t, err)
	assert.Equal(t, "RS01", code)

	code, err = alloc.Propose(ctx, "Red Shirt", []string{"RS01", "rs02"})
	assert.NoError(t, err)
	assert.Equal(t, "RS03", code)
}

func TestPropose_SkipsLiveReservations(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	assert.NoError(t, alloc.Reserve(ctx, "RS01", "session-a"))

	code, err := alloc.Propose(ctx, "Red Shirt", nil)
	assert.NoError(t, err)
	assert.Equal(t, "RS02", code)
}

func TestPropose_Exhaustion(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	scope := make([]string, 0, DefaultMaxCandidates)
	for i := 1; i <= DefaultMaxCandidates; i++ {
		scope = append(scope, fmt.Sprintf("RS%02d", i))
	}

	_, err := alloc.Propose(ctx, "Red Shirt", scope)
	assert.ErrorIs(t, err, ErrNoCodeAvailable)
}

func TestReserve_ConflictBetweenSessions(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-a"))

	err := alloc.Reserve(ctx, "ABC01", "session-b")
	var conflict *CodeConflictError
	assert.ErrorAs(t, err, &conflict)
	assert.Equal(t, "ABC01", conflict.Code)
	assert.Equal(t, "session-a", conflict.OwnerID)

	// Same owner refreshes its own claim
	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-a"))
}

func TestRelease_ThenReserveSucceeds(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-a"))
	assert.NoError(t, alloc.Release(ctx, []string{"ABC01"}, "session-a"))
	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-b"))
}

func TestRelease_Idempotent(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	// Releasing codes that were never reserved is a no-op
	assert.NoError(t, alloc.Release(ctx, []string{"ABC01", "ABC02"}, "session-a"))

	// Releasing another session's reservation does not free it
	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-a"))
	assert.NoError(t, alloc.Release(ctx, []string{"ABC01"}, "session-b"))

	err := alloc.Reserve(ctx, "ABC01", "session-b")
	var conflict *CodeConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestReserve_ExpiredReservationIsReclaimable(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	alloc := New(store, logger)
	alloc.SetTTL(time.Minute)
	ctx := context.Background()

	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-a"))

	// Still within TTL
	var conflict *CodeConflictError
	assert.ErrorAs(t, alloc.Reserve(ctx, "ABC01", "session-b"), &conflict)

	current = current.Add(2 * time.Minute)
	assert.NoError(t, alloc.Reserve(ctx, "ABC01", "session-b"))
}

func TestProposeAndReserve_RetriesPastConflicts(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	// Another session already holds the first two candidates
	assert.NoError(t, alloc.Reserve(ctx, "RS01", "session-a"))
	assert.NoError(t, alloc.Reserve(ctx, "RS02", "session-a"))

	code, err := alloc.ProposeAndReserve(ctx, "Red Shirt", "session-b", nil)
	assert.NoError(t, err)
	assert.Equal(t, "RS03", code)

	// The winning code is now held for session-b
	var conflict *CodeConflictError
	assert.ErrorAs(t, alloc.Reserve(ctx, "RS03", "session-c"), &conflict)
}

func TestProposeAndReserve_ConcurrentSessionsGetDistinctCodes(t *testing.T) {
	alloc, _ := newTestAllocator()
	ctx := context.Background()

	const sessions = 20
	var wg sync.WaitGroup
	codes := make([]string, sessions)
	errs := make([]error, sessions)

	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], errs[i] = alloc.ProposeAndReserve(ctx, "Red Shirt", fmt.Sprintf("session-%d", i), nil)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, sessions)
	for i := 0; i < sessions; i++ {
		assert.NoError(t, errs[i])
		assert.False(t, seen[codes[i]], "code %s allocated twice", codes[i])
		seen[codes[i]] = true
	}
}
