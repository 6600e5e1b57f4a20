package policy

import "time"

// General Structs used for returns and inputs.

// Tier is the urgency level of an update prompt.
type Tier int

const (
	TierNone Tier = iota
	TierSoftNudge
	TierRegularUpdate
	TierForceUpdate
)

// String returns the identifier used in logs, metrics and webhook payloads.
func (t Tier) String() string {
	switch t {
	case TierSoftNudge:
		return "soft_nudge"
	case TierRegularUpdate:
		return "regular_update"
	case TierForceUpdate:
		return "force_update"
	default:
		return "none"
	}
}

// Default prompt copy used when the policy document does not carry its own.
const (
	DefaultTitle       = "Please Update your app."
	DefaultDescription = "Critical update has been released."
)

// EvalInput serves as a DataTransferObject for the Evaluate method of every tier.
type EvalInput struct {
	InstalledVersion string

	// LastPromptAt is the last time a dismissible prompt was shown.
	// The zero value means no prompt has ever been shown.
	LastPromptAt time.Time
	Now          time.Time

	// UpdateAvailable is only meaningful for the regular update tier and is
	// filled in after the store lookup.
	UpdateAvailable bool
}

// Decision is the outcome of an evaluation and everything a host needs to present it.
type Decision struct {
	Tier        Tier
	Title       string
	Description string
	Dismissible bool
	RedirectURL string
	Reason      string
}

// Prompt reports whether the host has to present anything.
func (d Decision) Prompt() bool {
	return d.Tier != TierNone
}

// None builds an empty decision carrying only a reason.
func None(reason string) Decision {
	return Decision{Tier: TierNone, Reason: reason}
}
