package state

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores_Lifecycle(t *testing.T) {
	stores := map[string]Store{
		"memory": &Memory{},
		"sqlite": newSQLite(t),
	}

	first := time.Date(2025, 12, 21, 10, 30, 0, 250_000_000, time.UTC)
	second := first.Add(3 * 24 * time.Hour)

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.LastPromptTimestamp(ctx)
			require.NoError(t, err)
			assert.False(t, ok, "slot must start absent")

			require.NoError(t, s.SetLastPromptTimestamp(ctx, first))
			got, ok, err := s.LastPromptTimestamp(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, first.Equal(got), "got %s, want %s", got, first)

			require.NoError(t, s.SetLastPromptTimestamp(ctx, second))
			got, ok, err = s.LastPromptTimestamp(ctx)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, second.Equal(got), "slot must be overwritten, got %s", got)

			require.NoError(t, s.ClearLastPromptTimestamp(ctx))
			_, ok, err = s.LastPromptTimestamp(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.ClearLastPromptTimestamp(ctx), "clearing an empty slot is fine")
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	at := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.SetLastPromptTimestamp(context.Background(), at))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.LastPromptTimestamp(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, at.Equal(got))
}

func TestSQLite_StoresEpochSeconds(t *testing.T) {
	s := newSQLite(t)
	at := time.Unix(1700000000, 500_000_000)
	require.NoError(t, s.SetLastPromptTimestamp(context.Background(), at))

	var seconds float64
	require.NoError(t, s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, TimestampKey).Scan(&seconds))
	assert.InDelta(t, 1700000000.5, seconds, 1e-6)
}

func TestContentionBackoff(t *testing.T) {
	locked := errors.New("database is locked (5) (SQLITE_BUSY)")
	fast := contentionBackoff{attempts: 3, initial: time.Millisecond, ceiling: 2 * time.Millisecond}

	t.Run("Retries Until The Lock Clears", func(t *testing.T) {
		calls := 0
		err := fast.do(context.Background(), func() error {
			calls++
			if calls < 3 {
				return locked
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("Gives Up After Attempts", func(t *testing.T) {
		calls := 0
		err := fast.do(context.Background(), func() error {
			calls++
			return locked
		})
		assert.ErrorIs(t, err, locked)
		assert.Equal(t, 3, calls)
	})

	t.Run("Other Errors Are Not Retried", func(t *testing.T) {
		calls := 0
		err := fast.do(context.Background(), func() error {
			calls++
			return errors.New("no such table: kv")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("Cancelled Context Stops Waiting", func(t *testing.T) {
		slow := contentionBackoff{attempts: 5, initial: time.Hour, ceiling: time.Hour}
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		started := time.Now()
		err := slow.do(ctx, func() error {
			calls++
			cancel()
			return locked
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
		assert.Less(t, time.Since(started), time.Second)
	})
}

func TestContentionBackoff_Wait(t *testing.T) {
	b := contentionBackoff{attempts: 5, initial: 10 * time.Millisecond, ceiling: 40 * time.Millisecond}

	for n, base := range []time.Duration{10, 20, 40, 40, 40} {
		base *= time.Millisecond
		got := b.wait(n)
		assert.GreaterOrEqual(t, got, base, "retry %d", n)
		assert.Less(t, got, base+base/2+1, "retry %d", n)
	}
}
