package slot

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlot_Lifecycle(t *testing.T) {
	s := New[string]()
	assert.Equal(t, StateIdle, s.State())

	ticket := s.Begin()
	assert.Equal(t, StatePending, s.State())

	require.True(t, s.Succeed(ticket, "done"))
	snap := s.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "done", snap.Result)
	assert.NoError(t, snap.Err)
	assert.False(t, snap.EndedAt.Before(snap.StartedAt))
}

func TestSlot_BeginClearsPreviousFailure(t *testing.T) {
	s := New[string]()

	first := s.Begin()
	require.True(t, s.Fail(first, errors.New("malformed archive")))
	assert.Equal(t, StateFailed, s.State())

	second := s.Begin()
	snap := s.Snapshot()
	assert.Equal(t, StatePending, snap.State)
	assert.NoError(t, snap.Err)
	assert.Empty(t, snap.Result)

	require.True(t, s.Succeed(second, "fresh"))
	snap = s.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, "fresh", snap.Result)
	assert.NoError(t, snap.Err)
}

func TestSlot_StaleCompletionIgnored(t *testing.T) {
	s := New[int]()

	stale := s.Begin()
	current := s.Begin()

	assert.False(t, s.Succeed(stale, 1))
	assert.False(t, s.Fail(stale, errors.New("late")))
	assert.Equal(t, StatePending, s.State())

	assert.True(t, s.Succeed(current, 2))
	assert.Equal(t, 2, s.Snapshot().Result)

	// A finished ticket cannot complete twice.
	assert.False(t, s.Fail(current, errors.New("again")))
	assert.Equal(t, StateSucceeded, s.State())
}

func TestSlot_Complete(t *testing.T) {
	s := New[int]()

	ticket := s.Begin()
	require.True(t, s.Complete(ticket, 0, errors.New("boom")))
	assert.Equal(t, StateFailed, s.State())
	assert.EqualError(t, s.Snapshot().Err, "boom")

	ticket = s.Begin()
	require.True(t, s.Complete(ticket, 7, nil))
	assert.Equal(t, StateSucceeded, s.State())
}

func TestSlot_Reset(t *testing.T) {
	s := New[int]()

	ticket := s.Begin()
	s.Reset()
	assert.Equal(t, StateIdle, s.State())
	assert.False(t, s.Succeed(ticket, 1))
	assert.Equal(t, StateIdle, s.State())
}

func TestSlot_LastRequestWins(t *testing.T) {
	s := New[int]()

	var (
		wg      sync.WaitGroup
		tickets = make([]Ticket, 50)
	)
	for i := range tickets {
		tickets[i] = s.Begin()
	}
	last := tickets[len(tickets)-1]

	for i, ticket := range tickets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Succeed(ticket, i)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Equal(t, StateSucceeded, snap.State)
	assert.Equal(t, last, snap.Ticket)
	assert.Equal(t, len(tickets)-1, snap.Result)
}
