package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/state"
	"github.com/aravindh-murugesan/updatesentry-go/internal/workflow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var stateCommand = &cobra.Command{
	Use:     "state",
	Short:   "Inspect or reset the persisted prompt history",
	GroupID: "updatesentry",
}

var stateShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Print the last time a dismissible prompt was shown",
	RunE: func(cmd *cobra.Command, args []string) error {
		at, ok, err := workflow.ShowState(viper.GetString("state-db"))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("%s: never shown\n", state.TimestampKey)
			return nil
		}
		fmt.Printf("%s: %s (%s ago)\n", state.TimestampKey, at.Format(time.RFC3339), time.Since(at).Round(time.Second))
		return nil
	},
}

var stateClearCommand = &cobra.Command{
	Use:   "clear",
	Short: "Forget the last prompt so the next dismissible prompt is due immediately",
	RunE: func(cmd *cobra.Command, args []string) error {
		return workflow.ClearState(viper.GetString("state-db"), viper.GetString("log-level"))
	},
}

var policyCommand = &cobra.Command{
	Use:     "policy",
	Short:   "Work with the remote update policy",
	GroupID: "updatesentry",
}

var policyShowCommand = &cobra.Command{
	Use:   "show",
	Short: "Fetch and print the decoded update policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := workflow.FetchPolicy(loadConfig())
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(doc)
	},
}

func init() {
	rootCommand.AddCommand(stateCommand)
	stateCommand.AddCommand(stateShowCommand)
	stateCommand.AddCommand(stateClearCommand)

	rootCommand.AddCommand(policyCommand)
	policyCommand.AddCommand(policyShowCommand)
}
