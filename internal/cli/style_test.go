package cli

import (
	"testing"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestRenderDecision(t *testing.T) {
	tests := []struct {
		name       string
		decision   policy.Decision
		wantCancel bool
		wantText   []string
	}{
		{
			name:     "No Prompt",
			decision: policy.None("Installed version is current"),
			wantText: []string{"No prompt.", "Installed version is current"},
		},
		{
			name: "Force Update Has No Cancel",
			decision: policy.Decision{
				Tier: policy.TierForceUpdate, Title: "Update required", Description: "Blocked", Reason: "listed",
			},
			wantText: []string{"Update required", "[ Update ]", "force_update"},
		},
		{
			name: "Soft Nudge Can Be Dismissed",
			decision: policy.Decision{
				Tier: policy.TierSoftNudge, Title: "New", Description: "Nudge", Dismissible: true, RedirectURL: "https://apps.example.com", Reason: "due",
			},
			wantCancel: true,
			wantText:   []string{"[ Update ]", "https://apps.example.com", "soft_nudge"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderDecision(tt.decision)
			for _, text := range tt.wantText {
				assert.Contains(t, out, text)
			}
			if tt.wantCancel {
				assert.Contains(t, out, "[ Cancel ]")
			} else {
				assert.NotContains(t, out, "[ Cancel ]")
			}
		})
	}
}

func TestNewDecisionView(t *testing.T) {
	view := newDecisionView(policy.Decision{Tier: policy.TierRegularUpdate, Title: "T", Dismissible: true, Reason: "r"})
	assert.Equal(t, "regular_update", view.Tier)
	assert.Equal(t, "T", view.Title)
	assert.True(t, view.Dismissible)
}

func TestPortFromAddress(t *testing.T) {
	assert.Equal(t, 9090, portFromAddress("0.0.0.0:9090"))
	assert.Equal(t, 8080, portFromAddress("localhost"))
	assert.Equal(t, 8080, portFromAddress(":http"))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("UPDATESENTRY_BUNDLE_ID", "com.example.env")
	t.Setenv("UPDATESENTRY_FETCH_TIMEOUT", "3s")
	t.Setenv("UPDATESENTRY_PARALLEL_FETCH", "true")

	cfg := loadConfig()

	assert.Equal(t, "com.example.env", cfg.BundleID)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.ParallelFetch)
	assert.Equal(t, "forceUpdate", cfg.PolicyPropertyName)
	assert.Equal(t, viper.GetString("store-lookup-url"), cfg.StoreLookupURL)
}
