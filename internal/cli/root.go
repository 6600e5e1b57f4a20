package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/notifications"
	"github.com/aravindh-murugesan/updatesentry-go/internal/remote"
	"github.com/aravindh-murugesan/updatesentry-go/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFile string

var rootCommand = &cobra.Command{
	Use:     "updatesentry-go",
	Aliases: []string{"updatesentry"},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Allow 'version' (and 'help') to run without any configuration
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file %q: %w", configFile, err)
			}
		}

		slog.SetDefault(workflow.SetupLogger(viper.GetString("log-level"), viper.GetString("bundle-id")))
		return nil
	},
	SilenceUsage: true,
	Short:        "UpdateSentry: app update prompt decision engine",
	Long: `UpdateSentry decides whether an installed app version should see no prompt,
a dismissible soft nudge, a dismissible regular update reminder or a blocking
force update. It combines a remote update policy, the latest version published
in the store and the time the user last saw a dismissible prompt.

Author: Aravindh Murugesan`,
}

func Execute() error {
	return rootCommand.Execute()
}

// loadConfig assembles the workflow configuration from flags, environment and config file.
func loadConfig() workflow.Config {
	return workflow.Config{
		BundleID:           viper.GetString("bundle-id"),
		CurrentVersion:     viper.GetString("current-version"),
		StoreRedirectURL:   viper.GetString("store-redirect-url"),
		PolicyBaseURL:      viper.GetString("policy-url"),
		PolicyPropertyName: viper.GetString("policy-property"),
		StoreLookupURL:     viper.GetString("store-lookup-url"),
		StatePath:          viper.GetString("state-db"),
		TimeoutSeconds:     viper.GetInt("timeout"),
		FetchTimeout:       viper.GetDuration("fetch-timeout"),
		VersionComparison:  viper.GetString("version-comparison"),
		DisableStoreLookup: viper.GetBool("disable-store-lookup"),
		ParallelFetch:      viper.GetBool("parallel-fetch"),
		Retry: remote.RetryConfig{
			MaxRetries:       viper.GetInt("max-retries"),
			BaseDelay:        1 * time.Second,
			MaxDelay:         5 * time.Second,
			OperationTimeout: 30 * time.Second,
		},
		Webhook: notifications.Webhook{
			URL:      viper.GetString("webhook-url"),
			Username: viper.GetString("webhook-username"),
			Password: viper.GetString("webhook-password"),
		},
		LogLevel: viper.GetString("log-level"),
	}
}

func init() {
	rootCommand.AddGroup(&cobra.Group{ID: "updatesentry", Title: "UpdateSentry"})

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (yaml, toml or json)")

	// Application identity
	flags.String("bundle-id", "", "Bundle identifier of the app in the store catalog (required)")
	flags.String("current-version", "", "Installed app version (required)")
	flags.String("store-redirect-url", "", "Store URL the user is sent to when accepting a prompt")

	// Remote signals
	flags.String("policy-url", "", "Base URL of the application properties service (required)")
	flags.String("policy-property", "forceUpdate", "Property name requested from the policy endpoint")
	flags.String("store-lookup-url", remote.DefaultStoreLookupURL, "Store lookup API used to find the latest published version")
	flags.Duration("fetch-timeout", 10*time.Second, "Timeout for each remote call")
	flags.Int("max-retries", 0, "Retries for transient remote failures (0 = fail open immediately)")
	flags.String("version-comparison", "string", "How the published version is compared: string or semver")
	flags.Bool("disable-store-lookup", false, "Only evaluate the policy driven tiers")
	flags.Bool("parallel-fetch", false, "Fetch the policy and the store version concurrently")

	// Runtime
	flags.String("state-db", "updatesentry.db", "SQLite file holding the last prompt timestamp (empty = in memory)")
	flags.Int("timeout", 0, "Global execution timeout in seconds (0 = run indefinitely)")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("webhook-url", "", "Webhook URL receiving every prompt decision")
	flags.String("webhook-username", "", "Webhook username")
	flags.String("webhook-password", "", "Webhook password")

	// Bind every persistent flag so it can also come from UPDATESENTRY_* env vars or the config file
	_ = viper.BindPFlags(flags)

	viper.SetEnvPrefix("UPDATESENTRY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
