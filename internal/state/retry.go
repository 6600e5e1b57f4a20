package state

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"
)

// contentionBackoff bounds how long a write waits for a competing writer,
// usually the daemon and a one-shot CLI run sharing the same file.
type contentionBackoff struct {
	attempts int
	initial  time.Duration
	ceiling  time.Duration
}

var writeBackoff = contentionBackoff{
	attempts: 4,
	initial:  50 * time.Millisecond,
	ceiling:  500 * time.Millisecond,
}

var lockMessages = []string{
	"SQLITE_BUSY",
	"SQLITE_LOCKED",
	"database is locked",
	"database table is locked",
}

func isLockContention(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range lockMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// wait returns the pause before retry n (0-based): doubling from initial,
// capped at ceiling, with up to half of it added as jitter.
func (b contentionBackoff) wait(n int) time.Duration {
	d := b.initial
	for i := 0; i < n && d < b.ceiling; i++ {
		d *= 2
	}
	d = min(d, b.ceiling)
	if half := int64(d / 2); half > 0 {
		d += time.Duration(rand.Int64N(half))
	}
	return d
}

// do retries write while it reports lock contention. A ctx cancelled during
// a wait ends the loop with ctx.Err().
func (b contentionBackoff) do(ctx context.Context, write func() error) error {
	var err error
	for n := 0; n < b.attempts; n++ {
		if err = write(); !isLockContention(err) {
			return err
		}
		if n == b.attempts-1 {
			break
		}

		timer := time.NewTimer(b.wait(n))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func retryOnContention(ctx context.Context, write func() error) error {
	return writeBackoff.do(ctx, write)
}
