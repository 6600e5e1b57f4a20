package notifications

import (
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
)

type Webhook struct {
	URL      string
	Username string
	Password string
}

// Enabled reports whether a webhook URL is configured.
func (w *Webhook) Enabled() bool {
	return w != nil && w.URL != ""
}

// DecisionNotification is posted for every evaluation that produced a prompt.
type DecisionNotification struct {
	Service          string    `json:"service"`
	RunID            string    `json:"run_id"`
	BundleID         string    `json:"bundle_id"`
	InstalledVersion string    `json:"installed_version"`
	Tier             string    `json:"tier"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Dismissible      bool      `json:"dismissible"`
	RedirectURL      string    `json:"redirect_url"`
	Reason           string    `json:"reason"`
	EvaluatedAt      time.Time `json:"evaluated_at"`
}

// NewDecisionNotification builds the payload for a decision.
func NewDecisionNotification(runID, bundleID, installedVersion string, decision policy.Decision, evaluatedAt time.Time) DecisionNotification {
	return DecisionNotification{
		Service:          "updatesentry",
		RunID:            runID,
		BundleID:         bundleID,
		InstalledVersion: installedVersion,
		Tier:             decision.Tier.String(),
		Title:            decision.Title,
		Description:      decision.Description,
		Dismissible:      decision.Dismissible,
		RedirectURL:      decision.RedirectURL,
		Reason:           decision.Reason,
		EvaluatedAt:      evaluatedAt.UTC(),
	}
}
