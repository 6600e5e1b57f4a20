package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	UpdatesentryVersion, UpdatesentryCommit, UpdatesentryDate string
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Display version, commit hash, build date, and other build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("UpdateSentry version: %s\n", UpdatesentryVersion)
		fmt.Printf("Commit: %s\n", UpdatesentryCommit)
		fmt.Printf("Built: %s\n", UpdatesentryDate)
	},
}

func init() {
	rootCommand.AddCommand(versionCommand)
}
