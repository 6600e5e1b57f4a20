package remote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedFetcher returns the queued errors in order, then succeeds.
type scriptedFetcher struct {
	errs  []error
	calls int
}

func (s *scriptedFetcher) next() error {
	s.calls++
	if len(s.errs) == 0 {
		return nil
	}
	err := s.errs[0]
	s.errs = s.errs[1:]
	return err
}

func (s *scriptedFetcher) FetchPolicy(ctx context.Context) (*policy.Document, error) {
	if err := s.next(); err != nil {
		return nil, err
	}
	return &policy.Document{}, nil
}

func (s *scriptedFetcher) FetchLatestVersion(ctx context.Context, bundleID string) (string, error) {
	if err := s.next(); err != nil {
		return "", err
	}
	return "9.9.9", nil
}

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:       maxRetries,
		BaseDelay:        time.Millisecond,
		MaxDelay:         5 * time.Millisecond,
		OperationTimeout: 5 * time.Second,
	}
}

func TestWithRetry(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		retries   int
		wantCalls int
		wantKind  error
	}{
		{
			name:      "Succeeds First Time",
			retries:   3,
			wantCalls: 1,
		},
		{
			name:      "Recovers From Transient Errors",
			errs:      []error{transportError("store", 503, errors.New("down")), transportError("store", 0, errors.New("reset"))},
			retries:   3,
			wantCalls: 3,
		},
		{
			name:      "Gives Up After Max Retries",
			errs:      []error{transportError("store", 500, errors.New("a")), transportError("store", 500, errors.New("b")), transportError("store", 500, errors.New("c"))},
			retries:   2,
			wantCalls: 3,
			wantKind:  ErrTransport,
		},
		{
			name:      "Decode Errors Fail Fast",
			errs:      []error{decodeError("store", errors.New("garbage"))},
			retries:   3,
			wantCalls: 1,
			wantKind:  ErrDecode,
		},
		{
			name:      "Client Errors Fail Fast",
			errs:      []error{transportError("store", 404, errors.New("missing"))},
			retries:   3,
			wantCalls: 1,
			wantKind:  ErrTransport,
		},
		{
			name:      "Rate Limit Is Retried",
			errs:      []error{transportError("store", 429, errors.New("slow down"))},
			retries:   1,
			wantCalls: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scriptedFetcher{errs: tt.errs}
			f := WithRetry(inner, fastRetry(tt.retries))

			version, err := f.FetchLatestVersion(context.Background(), "com.example.app")

			assert.Equal(t, tt.wantCalls, inner.calls)
			if tt.wantKind != nil {
				assert.ErrorIs(t, err, tt.wantKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "9.9.9", version)
		})
	}
}

func TestWithRetry_Policy(t *testing.T) {
	inner := &scriptedFetcher{errs: []error{transportError("policy", 502, errors.New("bad gateway"))}}
	f := WithRetry(inner, fastRetry(1))

	doc, err := f.FetchPolicy(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, 2, inner.calls)
}

func TestWithRetry_ZeroRetriesIsPassThrough(t *testing.T) {
	inner := &scriptedFetcher{}
	assert.Same(t, Fetcher(inner), WithRetry(inner, RetryConfig{}))
}

func TestExecuteAction_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := ExecuteAction(ctx, fastRetry(3), "policy", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}

	first := backoffDelay(cfg, 0)
	assert.GreaterOrEqual(t, first, 100*time.Millisecond)
	assert.Less(t, first, 150*time.Millisecond)

	assert.Equal(t, time.Second, backoffDelay(cfg, 10))
	assert.Zero(t, backoffDelay(RetryConfig{}, 0))
}
