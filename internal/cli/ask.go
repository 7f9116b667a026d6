package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/model"
)

// cliPages are the navigable sections the command router may target.
// The router never emits a page outside this enumeration.
var cliPages = []model.Page{
	"welcome",
	"image-analysis",
	"prescription-analysis",
	"checkup",
	"mental-health",
	"symptom-checker",
	"live-alerts",
	"health-briefing",
	"activity-history",
	"profile",
}

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the health assistant",
	Long: `Route a natural-language request through the assistant. The assistant
either answers directly or, for requests like "check my symptoms",
names the matching app section.

Example:
  geosick ask "what helps against mosquito bites?"
  geosick ask "I want to check my symptoms"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	command, err := svc.RouteCommand(ctx, strings.Join(args, " "), resolveLanguage(cfg), cliPages)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(command)
	}
	fmt.Println(command.ResponseText)
	if command.Action == model.ActionNavigate {
		fmt.Printf("\nSee: geosick %s\n", pageToCommand(command.Page))
	}
	return nil
}

// pageToCommand maps an app section to the CLI command that covers it.
func pageToCommand(page model.Page) string {
	switch page {
	case "image-analysis":
		return "image"
	case "prescription-analysis":
		return "prescription"
	case "symptom-checker":
		return "symptoms"
	case "checkup", "mental-health":
		return "checkup"
	case "live-alerts":
		return "alerts"
	case "health-briefing":
		return "forecast"
	case "activity-history":
		return "history"
	case "profile":
		return "profile"
	default:
		return string(page)
	}
}
