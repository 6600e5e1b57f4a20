package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := NewMetrics()

	m.ObserveDecision(policy.TierForceUpdate, 20*time.Millisecond)
	m.ObserveDecision(policy.TierNone, 5*time.Millisecond)
	m.ObserveDecision(policy.TierNone, 5*time.Millisecond)
	m.ObserveFetchError("store", &remote.FetchError{Op: "store", Kind: remote.ErrDecode, Err: errors.New("empty")})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("force_update")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchErrorsTotal.WithLabelValues("store", "decode")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "updatesentry_evaluation_duration_seconds_count 3")
}
