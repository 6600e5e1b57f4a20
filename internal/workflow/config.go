package workflow

import (
	"fmt"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/engine"
	"github.com/aravindh-murugesan/updatesentry-go/internal/notifications"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
)

// Config gathers everything a host needs to run evaluations.
// The CLI fills it from flags, environment and the optional config file.
type Config struct {
	BundleID         string
	CurrentVersion   string
	StoreRedirectURL string

	PolicyBaseURL      string
	PolicyPropertyName string
	StoreLookupURL     string

	// StatePath is the SQLite file holding the prompt timestamp.
	// Empty keeps the state in memory for the lifetime of the process.
	StatePath string

	// TimeoutSeconds bounds a whole evaluation (0 = no global limit).
	TimeoutSeconds    int
	FetchTimeout      time.Duration
	VersionComparison string

	DisableStoreLookup bool
	ParallelFetch      bool

	Retry   remote.RetryConfig
	Webhook notifications.Webhook

	LogLevel string
}

// EngineConfig maps the host configuration onto the engine's.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		BundleID:           c.BundleID,
		CurrentVersion:     c.CurrentVersion,
		StoreRedirectURL:   c.StoreRedirectURL,
		FetchTimeout:       c.FetchTimeout,
		VersionComparison:  engine.VersionComparison(c.VersionComparison),
		DisableStoreLookup: c.DisableStoreLookup,
		ParallelFetch:      c.ParallelFetch,
	}
}

// Validate checks the settings the engine itself does not know about.
func (c Config) Validate() error {
	if c.PolicyBaseURL == "" {
		return fmt.Errorf("%w: policy base url is required", engine.ErrConfiguration)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout must not be negative", engine.ErrConfiguration)
	}
	return nil
}
