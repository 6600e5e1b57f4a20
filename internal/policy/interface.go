package policy

// TierPolicy defines the contract that every update tier (force, flexible, regular) must implement.
// It decouples the decision rules from where the policy document came from.
type TierPolicy interface {
	// GetTier returns the tier this policy can produce.
	GetTier() Tier

	// Evaluate determines if the prompt of this tier should be shown right now.
	// A Decision with TierNone means the tier has no verdict and evaluation moves on.
	Evaluate(input EvalInput) Decision
}
