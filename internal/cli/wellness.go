package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/store"
)

// symptomsCmd represents the symptoms command
var symptomsCmd = &cobra.Command{
	Use:   "symptoms <description>",
	Short: "Cautious triage of described symptoms",
	Long: `Analyze a plain-language symptom description and produce a cautious
triage recommendation with common potential conditions and next steps.

The output is informational, not a diagnosis.

Example:
  geosick symptoms "dry cough and mild fever for three days"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSymptoms,
}

// checkupCmd represents the checkup command
var checkupCmd = &cobra.Command{
	Use:   "checkup",
	Short: "Guided mental wellness check-in",
	Long: `Walk through a short set of reflective questions and receive a
supportive, non-diagnostic summary with coping strategies.

Example:
  geosick checkup`,
	Args: cobra.NoArgs,
	RunE: runCheckup,
}

// checkupQuestions mirrors the in-app questionnaire.
var checkupQuestions = []string{
	"How have you been feeling emotionally over the past two weeks?",
	"How are you sleeping?",
	"How would you describe your energy levels day to day?",
	"Is there anything that has been worrying you lately?",
	"What is one thing that brought you joy recently?",
}

func init() {
	rootCmd.AddCommand(symptomsCmd)
	rootCmd.AddCommand(checkupCmd)
}

func runSymptoms(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	lang := resolveLanguage(cfg)
	description := strings.Join(args, " ")

	report, err := svc.AnalyzeSymptoms(ctx, description, lang)
	if err != nil {
		return err
	}

	recordActivity(store.ActivitySymptoms, "Symptom check", lang, report)

	if asJSON {
		return printJSON(report)
	}
	fmt.Printf("Summary: %s\n\n", report.Summary)
	fmt.Printf("Recommendation: %s\n\n", report.TriageRecommendation)
	if len(report.PotentialConditions) > 0 {
		fmt.Println("Potential conditions:")
		for _, c := range report.PotentialConditions {
			fmt.Printf("  - %s: %s\n", c.Name, c.Description)
		}
		fmt.Println()
	}
	if len(report.NextSteps) > 0 {
		fmt.Println("Next steps:")
		for _, s := range report.NextSteps {
			fmt.Printf("  - %s\n", s)
		}
		fmt.Println()
	}
	fmt.Println(report.Disclaimer)
	return nil
}

func runCheckup(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}

	answers := map[string]string{}
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("A few questions. Answer in your own words; press Enter to skip one.")
	fmt.Println()
	for _, q := range checkupQuestions {
		fmt.Printf("%s\n> ", q)
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line != "" {
			answers[q] = line
		}
	}
	if len(answers) == 0 {
		return fmt.Errorf("no answers given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	lang := resolveLanguage(cfg)
	reflection, err := svc.Reflect(ctx, answers, lang)
	if err != nil {
		return err
	}

	recordActivity(store.ActivityMentalHealth, "Wellness check-in", lang, reflection)

	if asJSON {
		return printJSON(reflection)
	}
	fmt.Printf("\n%s\n\n", reflection.Summary)
	if len(reflection.PotentialConcerns) > 0 {
		fmt.Println("Things you mentioned:")
		for _, c := range reflection.PotentialConcerns {
			fmt.Printf("  - %s: %s\n", c.Name, c.Explanation)
		}
		fmt.Println()
	}
	if len(reflection.CopingStrategies) > 0 {
		fmt.Println("Things that may help:")
		for _, s := range reflection.CopingStrategies {
			fmt.Printf("  - %s: %s\n", s.Title, s.Description)
		}
		fmt.Println()
	}
	fmt.Println(reflection.Recommendation)
	return nil
}
