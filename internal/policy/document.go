package policy

import (
	"fmt"
	"time"
)

// Document is the remote update policy. It is never mutated after decoding;
// a refresh produces a new Document.
type Document struct {
	ForceUpdate    ForceUpdateTier    `json:"forceUpdate"`
	FlexibleUpdate FlexibleUpdateTier `json:"flexibleUpdate"`
	RegularUpdate  RegularUpdateTier  `json:"regularUpdate"`
}

// Tiers returns the policy-driven tiers in evaluation order.
// Force update always wins, so it is evaluated first.
func (d *Document) Tiers() []TierPolicy {
	if d == nil {
		return nil
	}
	return []TierPolicy{&d.ForceUpdate, &d.FlexibleUpdate}
}

// ForceUpdateTier implements the TierPolicy interface for the blocking prompt.
//
// Behavior:
//   - Membership: Installed versions listed in BlockedVersions are blocked.
//   - No throttling: prompt history is ignored, the block is shown every time.
type ForceUpdateTier struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	BlockedVersions []string `json:"version"`
}

func (f *ForceUpdateTier) GetTier() Tier {
	return TierForceUpdate
}

func (f *ForceUpdateTier) Evaluate(input EvalInput) Decision {
	if !MatchesVersion(f.BlockedVersions, input.InstalledVersion) {
		return None(fmt.Sprintf("Version %s is not blocked", input.InstalledVersion))
	}

	return Decision{
		Tier:        TierForceUpdate,
		Title:       helperTextOrDefault(f.Title, DefaultTitle),
		Description: helperTextOrDefault(f.Description, DefaultDescription),
		Dismissible: false,
		Reason:      fmt.Sprintf("Version %s is listed in forceUpdate", input.InstalledVersion),
	}
}

// FlexibleUpdateTier implements the TierPolicy interface for the soft nudge.
//
// Behavior:
//   - Membership: Only versions listed in BlockedVersions are nudged.
//   - Throttling: The nudge is shown again only after RecurrenceIntervalDays
//     (SoftNudgeFallbackDays when absent) since the last dismissible prompt.
type FlexibleUpdateTier struct {
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	BlockedVersions        []string `json:"version"`
	RecurrenceIntervalDays *float64 `json:"recurrenceInterval"`
}

func (f *FlexibleUpdateTier) GetTier() Tier {
	return TierSoftNudge
}

func (f *FlexibleUpdateTier) Evaluate(input EvalInput) Decision {
	if !MatchesVersion(f.BlockedVersions, input.InstalledVersion) {
		return None(fmt.Sprintf("Version %s is not eligible for a soft nudge", input.InstalledVersion))
	}

	if !IsDue(input.LastPromptAt, input.Now, f.RecurrenceIntervalDays, SoftNudgeFallbackDays) {
		return None(helperThrottledReason(input, f.RecurrenceIntervalDays, SoftNudgeFallbackDays))
	}

	return Decision{
		Tier:        TierSoftNudge,
		Title:       helperTextOrDefault(f.Title, DefaultTitle),
		Description: helperTextOrDefault(f.Description, DefaultDescription),
		Dismissible: true,
		Reason:      fmt.Sprintf("Version %s is listed in flexibleUpdate and the nudge is due", input.InstalledVersion),
	}
}

// RegularUpdateTier implements the TierPolicy interface for the store driven prompt.
// It has no version list: the store lookup decides whether an update exists.
type RegularUpdateTier struct {
	Title                  string   `json:"title"`
	Description            string   `json:"description"`
	RecurrenceIntervalDays *float64 `json:"recurrenceInterval"`
}

func (r *RegularUpdateTier) GetTier() Tier {
	return TierRegularUpdate
}

func (r *RegularUpdateTier) Evaluate(input EvalInput) Decision {
	if !input.UpdateAvailable {
		return None("Installed version is current")
	}

	if !IsDue(input.LastPromptAt, input.Now, r.RecurrenceIntervalDays, RegularUpdateFallbackDays) {
		return None(helperThrottledReason(input, r.RecurrenceIntervalDays, RegularUpdateFallbackDays))
	}

	return Decision{
		Tier:        TierRegularUpdate,
		Title:       helperTextOrDefault(r.Title, DefaultTitle),
		Description: helperTextOrDefault(r.Description, DefaultDescription),
		Dismissible: true,
		Reason:      "A newer version is published and the reminder is due",
	}
}

// RegularTier returns the regular update tier, or an empty one when no
// document is available so that the fallback interval applies.
func (d *Document) RegularTier() *RegularUpdateTier {
	if d == nil {
		return &RegularUpdateTier{}
	}
	return &d.RegularUpdate
}

func helperThrottledReason(input EvalInput, intervalDays *float64, fallbackDays float64) string {
	return fmt.Sprintf("Last prompt shown at %s, interval of %.2f days has not elapsed",
		input.LastPromptAt.UTC().Format(time.RFC3339),
		effectiveInterval(intervalDays, fallbackDays))
}
