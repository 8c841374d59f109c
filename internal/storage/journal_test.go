package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegolucasb/lockbox/internal/action"
	"github.com/diegolucasb/lockbox/internal/flux"
	"github.com/diegolucasb/lockbox/internal/testutil"
)

func fixedNow(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestJournal_RoundTripsDispatchedActions(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	j := NewJournal(s, "session-1", WithNow(fixedNow(1_700_000_000_000)))

	d := flux.NewDispatcher(flux.WithHook(j), flux.WithClock(testutil.NewDeterministicClock()))

	dispatched := []action.Action{
		action.Unlock{},
		action.ItemDetail{ID: "the_guid"},
		action.SecurityDisclaimer(),
		action.SystemSetting{Intent: action.IntentSecurity},
		action.Lock{},
	}
	for _, a := range dispatched {
		d.Dispatch(a)
	}

	replayed, err := ReplayJournal(ctx, s, "session-1")
	require.NoError(t, err)
	assert.Equal(t, dispatched, replayed)

	entries, err := ReadJournal(ctx, s, "session-1")
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, int64(i+1), e.Seq)
		assert.Equal(t, "session-1", e.Session)
	}
	assert.Equal(t, map[string]string{"id": "the_guid"}, entries[1].Args)
	assert.Nil(t, entries[0].Args)
	assert.Equal(t, int64(1_700_000_000_000), entries[0].RecordedAt.UnixMilli())
}

func TestJournal_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)

	a := NewJournal(s, "a", WithNow(fixedNow(1000)))
	b := NewJournal(s, "b", WithNow(fixedNow(2000)))
	require.NoError(t, a.Append(ctx, 1, action.Unlock{}))
	require.NoError(t, a.Append(ctx, 2, action.Filter{}))
	require.NoError(t, b.Append(ctx, 1, action.Lock{}))

	sessions, err := Sessions(ctx, s)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].ID, "most recent first")
	assert.Equal(t, 1, sessions[0].Actions)
	assert.Equal(t, "a", sessions[1].ID)
	assert.Equal(t, 2, sessions[1].Actions)

	entries, err := ReadJournal(ctx, s, "a")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = ReadJournal(ctx, s, "nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestJournal_DuplicateSeqRejected(t *testing.T) {
	ctx := context.Background()
	s := createTestStore(t)
	j := NewJournal(s, "dup")

	require.NoError(t, j.Append(ctx, 1, action.Unlock{}))
	err := j.Append(ctx, 1, action.Lock{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert journal entry 1")
}

func TestJournal_HookFailureDoesNotStopDispatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO action_journal").WillReturnError(errors.New("disk full"))

	j := NewJournal(NewWithDB(db), "s")
	d := flux.NewDispatcher(flux.WithHook(j))

	delivered := 0
	d.Subscribe(func(action.Action) { delivered++ })
	d.Dispatch(action.Sync{})

	assert.Equal(t, 1, delivered)
	require.NoError(t, mock.ExpectationsWereMet())
}
