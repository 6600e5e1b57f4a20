package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhook_Notify(t *testing.T) {
	var (
		got              DecisionNotification
		gotUser, gotPass string
		gotAuth          bool
		gotContentType   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuth = r.BasicAuth()
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	decision := policy.Decision{
		Tier:        policy.TierSoftNudge,
		Title:       "Update",
		Description: "Please",
		Dismissible: true,
		RedirectURL: "https://apps.example.com/app",
		Reason:      "listed",
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	hook := &Webhook{URL: server.URL, Username: "ops", Password: "secret"}
	err := hook.Notify(context.Background(), NewDecisionNotification("req-1", "com.example.app", "1.2.0", decision, at))
	require.NoError(t, err)

	assert.True(t, gotAuth)
	assert.Equal(t, "ops", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "soft_nudge", got.Tier)
	assert.Equal(t, "com.example.app", got.BundleID)
	assert.Equal(t, "1.2.0", got.InstalledVersion)
	assert.Equal(t, "req-1", got.RunID)
	assert.True(t, got.Dismissible)
	assert.True(t, at.Equal(got.EvaluatedAt))
}

func TestWebhook_NotifyErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, ok := r.BasicAuth()
		assert.False(t, ok, "no credentials configured, no auth header expected")
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	hook := &Webhook{URL: server.URL}
	err := hook.Notify(context.Background(), DecisionNotification{Tier: "force_update"})
	assert.ErrorContains(t, err, "status 502")
}

func TestWebhook_Enabled(t *testing.T) {
	var nilHook *Webhook
	assert.False(t, nilHook.Enabled())
	assert.False(t, (&Webhook{}).Enabled())
	assert.True(t, (&Webhook{URL: "https://hooks.example.com"}).Enabled())
}
