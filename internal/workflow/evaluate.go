package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/engine"
	"github.com/aravindh-murugesan/updatesentry-go/internal/notifications"
	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
	"github.com/aravindh-murugesan/updatesentry-go/internal/state"
	"github.com/google/uuid"
)

// Runner owns one engine and its capabilities. The daemon keeps a single
// Runner alive so that every scheduled evaluation shares the engine lock.
type Runner struct {
	cfg     Config
	engine  *engine.Engine
	store   state.Store
	closer  func() error
	webhook notifications.Webhook
	logger  *slog.Logger
}

// NewRunner validates cfg and wires fetcher, state store and engine.
// Configuration problems are returned wrapping engine.ErrConfiguration.
func NewRunner(cfg Config, logger *slog.Logger, observer engine.Observer) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(cfg.EngineConfig(), fetcher, store,
		engine.WithLogger(logger),
		engine.WithObserver(observer),
	)
	if err != nil {
		_ = closer()
		return nil, err
	}

	return &Runner{
		cfg:     cfg,
		engine:  eng,
		store:   store,
		closer:  closer,
		webhook: cfg.Webhook,
		logger:  logger,
	}, nil
}

// Close releases the state store.
func (r *Runner) Close() error {
	return r.closer()
}

// Run performs one evaluation at now and delivers the webhook for prompts.
// A webhook failure is logged, never returned: it must not change the decision.
func (r *Runner) Run(ctx context.Context, now time.Time) policy.Decision {
	runID := fmt.Sprintf("req-%s", uuid.New().String())
	runLogger := r.logger.With("updatesentry_id", runID)

	if r.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(r.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
		runLogger.Debug("Global evaluation timeout configured", "timeout_seconds", r.cfg.TimeoutSeconds)
	}

	runLogger.Debug("Starting evaluation", "evaluation_time", now)
	decision := r.engine.Evaluate(ctx, now)

	if decision.Prompt() && r.webhook.Enabled() {
		notification := notifications.NewDecisionNotification(runID, r.cfg.BundleID, r.cfg.CurrentVersion, decision, now)
		if err := r.webhook.Notify(ctx, notification); err != nil {
			runLogger.Error("Decision webhook delivery failed", "error", err)
		} else {
			runLogger.Debug("Decision webhook delivered", "tier", decision.Tier.String())
		}
	}

	return decision
}

// RunEvaluation is the one-shot variant used by the evaluate command.
func RunEvaluation(cfg Config, now time.Time) (policy.Decision, error) {
	logger := SetupLogger(cfg.LogLevel, cfg.BundleID).With("workflow", "evaluate")

	runner, err := NewRunner(cfg, logger, nil)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		return policy.Decision{}, err
	}
	defer runner.Close()

	return runner.Run(context.Background(), now), nil
}

func newFetcher(cfg Config) (remote.Fetcher, error) {
	client, err := remote.NewHTTPClient(cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}

	fetcher := &remote.HTTPFetcher{
		BaseURL:        cfg.PolicyBaseURL,
		PropertyName:   cfg.PolicyPropertyName,
		StoreLookupURL: cfg.StoreLookupURL,
		Client:         client,
	}
	return remote.WithRetry(fetcher, cfg.Retry), nil
}

func openStore(path string) (state.Store, func() error, error) {
	if path == "" {
		return &state.Memory{}, func() error { return nil }, nil
	}

	store, err := state.OpenSQLite(path)
	if err != nil {
		return nil, nil, fmt.Errorf("state store initialization failed: %w", err)
	}
	return store, store.Close, nil
}
