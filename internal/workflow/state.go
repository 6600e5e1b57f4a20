package workflow

import (
	"context"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
)

// ShowState returns the persisted prompt timestamp.
func ShowState(statePath string) (time.Time, bool, error) {
	store, closer, err := openStore(statePath)
	if err != nil {
		return time.Time{}, false, err
	}
	defer closer()

	return store.LastPromptTimestamp(context.Background())
}

// ClearState removes the persisted prompt timestamp, so the next dismissible
// prompt is shown immediately.
func ClearState(statePath string, logLevel string) error {
	logger := SetupLogger(logLevel, "").With("workflow", "state-clear", "state_path", statePath)

	store, closer, err := openStore(statePath)
	if err != nil {
		logger.Error("Failed to open state store", "error", err)
		return err
	}
	defer closer()

	if err := store.ClearLastPromptTimestamp(context.Background()); err != nil {
		logger.Error("Failed to clear prompt history", "error", err)
		return err
	}

	logger.Info("Prompt history cleared")
	return nil
}

// FetchPolicy downloads and decodes the policy document once, without
// evaluating it.
func FetchPolicy(cfg Config) (*policy.Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	return fetcher.FetchPolicy(ctx)
}
