package engine

import (
	"errors"
	"fmt"
	"time"
)

// ErrConfiguration is returned by New when the engine cannot be set up.
// It is the only error the engine ever surfaces to the integrating application.
var ErrConfiguration = errors.New("configuration error")

// VersionComparison selects how the store reported version is compared to the installed one.
type VersionComparison string

const (
	// CompareString treats any difference as an available update.
	CompareString VersionComparison = "string"
	// CompareSemver requires the published version to be strictly greater.
	// Versions that do not parse fall back to CompareString.
	CompareSemver VersionComparison = "semver"
)

const defaultFetchTimeout = 10 * time.Second

// Config describes the running application instance.
type Config struct {
	// BundleID identifies the app in the store catalog. Required.
	BundleID string
	// CurrentVersion is the installed version string. Required.
	CurrentVersion string
	// StoreRedirectURL is attached to every prompt so the host can send the user to the store.
	StoreRedirectURL string

	// FetchTimeout bounds each remote call. Defaults to 10s.
	FetchTimeout time.Duration

	VersionComparison VersionComparison

	// DisableStoreLookup stops evaluation after the policy driven tiers.
	DisableStoreLookup bool

	// ParallelFetch issues the policy and store requests together.
	ParallelFetch bool
}

// Normalize validates the configuration and sets sane defaults.
func (c *Config) Normalize() error {
	if c.BundleID == "" {
		return fmt.Errorf("%w: bundle id is required", ErrConfiguration)
	}
	if c.CurrentVersion == "" {
		return fmt.Errorf("%w: current version is required", ErrConfiguration)
	}

	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}

	switch c.VersionComparison {
	case "":
		c.VersionComparison = CompareString
	case CompareString, CompareSemver:
	default:
		return fmt.Errorf("%w: unknown version comparison %q", ErrConfiguration, c.VersionComparison)
	}

	return nil
}
