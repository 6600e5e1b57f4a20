package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
	"github.com/aravindh-murugesan/updatesentry-go/internal/state"
	goversion "github.com/hashicorp/go-version"
	"golang.org/x/sync/errgroup"
)

// Observer receives the outcome of every evaluation. The CLI plugs Prometheus in here.
type Observer interface {
	ObserveDecision(tier policy.Tier, duration time.Duration)
	ObserveFetchError(source string, err error)
}

type noopObserver struct{}

func (noopObserver) ObserveDecision(policy.Tier, time.Duration) {}
func (noopObserver) ObserveFetchError(string, error) {}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(observer Observer) Option {
	return func(e *Engine) {
		if observer != nil {
			e.observer = observer
		}
	}
}

// Engine decides which update prompt, if any, the user should see.
//
// Evaluations are serialized so that two concurrent calls cannot interleave
// writes to the persisted prompt timestamp.
type Engine struct {
	cfg      Config
	fetcher  remote.Fetcher
	store    state.Store
	logger   *slog.Logger
	observer Observer

	mu sync.Mutex
}

// New builds an engine. It returns an error wrapping ErrConfiguration when
// the configuration is incomplete or a capability is missing.
func New(cfg Config, fetcher remote.Fetcher, store state.Store, opts ...Option) (*Engine, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", ErrConfiguration)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: state store is required", ErrConfiguration)
	}

	e := &Engine{
		cfg:      cfg,
		fetcher:  fetcher,
		store:    store,
		logger:   slog.Default(),
		observer: noopObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With("component", "engine", "bundle_id", cfg.BundleID, "installed_version", cfg.CurrentVersion)

	return e, nil
}

// Evaluate runs one decision at instant now.
//
// Workflow:
//  1. Fetch the policy document. On failure continue without one.
//  2. Force update: installed version listed => blocking prompt, history untouched.
//  3. Soft nudge: installed version listed and the flexible interval elapsed => persist now.
//  4. Store lookup: newer version published and the regular interval elapsed => persist now.
//     If the installed version is current, the persisted timestamp is cleared.
//
// Any failure in step 4 yields TierNone.
func (e *Engine) Evaluate(ctx context.Context, now time.Time) policy.Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	started := time.Now()
	decision := e.evaluate(ctx, now)
	if decision.Prompt() {
		decision.RedirectURL = e.cfg.StoreRedirectURL
	}
	e.observer.ObserveDecision(decision.Tier, time.Since(started))

	e.logger.Info("Evaluation completed",
		"tier", decision.Tier.String(),
		"dismissible", decision.Dismissible,
		"reason", decision.Reason)

	return decision
}

func (e *Engine) evaluate(ctx context.Context, now time.Time) policy.Decision {
	// A. Fetch
	doc, lookup := e.fetchAll(ctx)

	// B. Load prompt history
	lastPrompt, hasHistory, err := e.store.LastPromptTimestamp(ctx)
	historyReadable := err == nil
	if err != nil {
		e.logger.Error("Prompt history unavailable; dismissible prompts suppressed", "error", err)
	}
	if !hasHistory {
		lastPrompt = time.Time{}
	}

	input := policy.EvalInput{
		InstalledVersion: e.cfg.CurrentVersion,
		LastPromptAt:     lastPrompt,
		Now:              now,
	}

	// C. Policy driven tiers
	for _, tier := range doc.Tiers() {
		tierLogger := e.logger.With("tier", tier.GetTier().String())

		if tier.GetTier() != policy.TierForceUpdate && !historyReadable {
			tierLogger.Debug("Skipping dismissible tier without prompt history")
			continue
		}

		decision := tier.Evaluate(input)
		if !decision.Prompt() {
			tierLogger.Debug("Tier has no verdict", "reason", decision.Reason)
			continue
		}

		if decision.Dismissible {
			e.recordPrompt(ctx, now)
		}
		return decision
	}

	// D. Store driven tier
	if e.cfg.DisableStoreLookup {
		return policy.None("Policy has no verdict and store lookup is disabled")
	}

	if lookup == nil {
		l := e.fetchLatestVersion(ctx)
		lookup = &l
	}
	if lookup.err != nil {
		return policy.None("Latest published version is unavailable")
	}

	if !e.updateAvailable(lookup.version) {
		if err := e.store.ClearLastPromptTimestamp(ctx); err != nil {
			e.logger.Error("Failed to clear prompt history", "error", err)
		}
		return policy.None(fmt.Sprintf("Installed version %s is current (published %s)", e.cfg.CurrentVersion, lookup.version))
	}

	if !historyReadable {
		return policy.None("Update available but prompt history is unavailable")
	}

	input.UpdateAvailable = true
	decision := doc.RegularTier().Evaluate(input)
	if decision.Prompt() {
		e.recordPrompt(ctx, now)
	}
	return decision
}

type lookupResult struct {
	version string
	err     error
}

// fetchAll fetches the policy, and the store version too when ParallelFetch is on.
// A nil lookupResult means the store has not been queried yet.
func (e *Engine) fetchAll(ctx context.Context) (*policy.Document, *lookupResult) {
	if !e.cfg.ParallelFetch || e.cfg.DisableStoreLookup {
		return e.fetchPolicy(ctx), nil
	}

	var (
		doc    *policy.Document
		lookup lookupResult
		g      errgroup.Group
	)
	g.Go(func() error {
		doc = e.fetchPolicy(ctx)
		return nil
	})
	g.Go(func() error {
		lookup = e.fetchLatestVersion(ctx)
		return nil
	})
	_ = g.Wait()

	return doc, &lookup
}

func (e *Engine) fetchPolicy(ctx context.Context) *policy.Document {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	doc, err := e.fetcher.FetchPolicy(ctx)
	if err != nil {
		e.logger.Warn("Policy fetch failed; continuing without policy", "error", err, "kind", remote.KindOf(err))
		e.observer.ObserveFetchError("policy", err)
		return nil
	}
	return doc
}

func (e *Engine) fetchLatestVersion(ctx context.Context) lookupResult {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	defer cancel()

	version, err := e.fetcher.FetchLatestVersion(ctx, e.cfg.BundleID)
	if err != nil {
		e.logger.Warn("Store lookup failed", "error", err, "kind", remote.KindOf(err))
		e.observer.ObserveFetchError("store", err)
		return lookupResult{err: err}
	}
	e.logger.Debug("Store lookup completed", "published_version", version)
	return lookupResult{version: version}
}

// updateAvailable compares the published version with the installed one.
func (e *Engine) updateAvailable(published string) bool {
	installed := e.cfg.CurrentVersion

	if e.cfg.VersionComparison == CompareSemver {
		pv, perr := goversion.NewVersion(published)
		iv, ierr := goversion.NewVersion(installed)
		if perr == nil && ierr == nil {
			return pv.GreaterThan(iv)
		}
		e.logger.Debug("Version is not semver; falling back to string comparison",
			"published_version", published)
	}

	return published != installed
}

func (e *Engine) recordPrompt(ctx context.Context, now time.Time) {
	if err := e.store.SetLastPromptTimestamp(ctx, now); err != nil {
		e.logger.Error("Failed to persist prompt timestamp", "error", err)
	}
}
