package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aravindh-murugesan/updatesentry-go/internal/policy"
	"github.com/aravindh-murugesan/updatesentry-go/internal/workflow"
	"github.com/spf13/cobra"
)

var (
	evaluateAt   string
	evaluateJSON bool
)

// decisionView is the JSON shape printed by `evaluate --json`.
type decisionView struct {
	Tier        string `json:"tier"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Dismissible bool   `json:"dismissible"`
	RedirectURL string `json:"redirect_url,omitempty"`
	Reason      string `json:"reason"`
}

func newDecisionView(d policy.Decision) decisionView {
	return decisionView{
		Tier:        d.Tier.String(),
		Title:       d.Title,
		Description: d.Description,
		Dismissible: d.Dismissible,
		RedirectURL: d.RedirectURL,
		Reason:      d.Reason,
	}
}

var evaluateCommand = &cobra.Command{
	Use:     "evaluate",
	GroupID: "updatesentry",
	Short:   "Decide which update prompt to show right now",
	Long:    `Fetches the update policy, checks the installed version against the force and flexible tiers, falls back to the store lookup for the regular tier and prints the resulting prompt. Dismissible prompts update the persisted prompt timestamp.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		if evaluateAt != "" {
			parsed, err := time.Parse(time.RFC3339, evaluateAt)
			if err != nil {
				return fmt.Errorf("invalid --at value %q; must be RFC3339: %w", evaluateAt, err)
			}
			now = parsed
		}

		if !evaluateJSON {
			fmt.Println(headerStyle.Render("UpdateSentry - Evaluation"))
		}

		decision, err := workflow.RunEvaluation(loadConfig(), now)
		if err != nil {
			return err
		}

		if evaluateJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(newDecisionView(decision))
		}

		fmt.Println(renderDecision(decision))
		return nil
	},
}

func init() {
	evaluateCommand.Flags().StringVar(&evaluateAt, "at", "", "Evaluate as if the current time were this RFC3339 instant")
	evaluateCommand.Flags().BoolVar(&evaluateJSON, "json", false, "Print the decision as JSON")
	rootCommand.AddCommand(evaluateCommand)
}
