// Package state persists the "last dismissible prompt shown" timestamp.
//
// The engine depends only on the Store interface. The slot holds a single
// optional instant stored as epoch seconds under TimestampKey.
package state

import (
	"context"
	"math"
	"time"
)

// TimestampKey names the persisted slot.
const TimestampKey = "nudgesTimeStamp"

// Store is the key-value capability used by the decision engine.
type Store interface {
	// LastPromptTimestamp returns the stored instant and whether one is set.
	LastPromptTimestamp(ctx context.Context) (time.Time, bool, error)

	// SetLastPromptTimestamp overwrites the slot.
	SetLastPromptTimestamp(ctx context.Context, at time.Time) error

	// ClearLastPromptTimestamp removes the slot. Clearing an empty slot is not an error.
	ClearLastPromptTimestamp(ctx context.Context) error
}

// toEpochSeconds converts t to fractional seconds since the Unix epoch.
func toEpochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// fromEpochSeconds is the inverse of toEpochSeconds, rounded to the microsecond.
func fromEpochSeconds(seconds float64) time.Time {
	whole, frac := math.Modf(seconds)
	return time.Unix(int64(whole), int64(frac*float64(time.Second))).Round(time.Microsecond).UTC()
}
