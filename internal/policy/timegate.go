package policy

import "time"

// Fallback recurrence intervals, used when the policy omits recurrenceInterval
// or could not be fetched at all.
const (
	SoftNudgeFallbackDays     = 2.0
	RegularUpdateFallbackDays = 7.0
)

const secondsPerDay = 86400

// IsDue reports whether enough time has passed since lastPrompt to show a
// dismissible prompt again.
//
// A zero lastPrompt is always due. Otherwise intervalDays is used when it is
// present and non-negative, fallbackDays when it is absent, negative or NaN. An elapsed time
// exactly equal to the interval is not yet due.
func IsDue(lastPrompt time.Time, now time.Time, intervalDays *float64, fallbackDays float64) bool {
	if lastPrompt.IsZero() {
		return true
	}

	elapsedDays := now.Sub(lastPrompt).Seconds() / secondsPerDay
	return effectiveInterval(intervalDays, fallbackDays) < elapsedDays
}

func effectiveInterval(intervalDays *float64, fallbackDays float64) float64 {
	// NaN fails the >= test and falls back too.
	if intervalDays == nil || !(*intervalDays >= 0) {
		return fallbackDays
	}
	return *intervalDays
}
