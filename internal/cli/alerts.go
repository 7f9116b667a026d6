package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/model"
)

var (
	alertsLocal   bool
	alertsLat     string
	alertsLng     string
	alertsRefresh bool
)

// alertsCmd represents the alerts command
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Live public health alerts",
	Long: `Survey recent public health alerts: disease outbreaks, air quality
warnings, heatwaves and environmental hazards.

By default the survey is global; --local restricts it to the area
around the given coordinates. Results are cached briefly; --refresh
forces a fresh survey.

Example:
  geosick alerts
  geosick alerts --local --lat 19.0760 --lng 72.8777
  geosick alerts --refresh`,
	Args: cobra.NoArgs,
	RunE: runAlerts,
}

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot <city> <country>",
	Short: "Public health snapshot for a city",
	Long: `Build a grounded public health snapshot for a city: the most
discussed diseases, their trends, and descriptive case estimates from
recent public reporting.

Example:
  geosick snapshot Mumbai India`,
	Args: cobra.ExactArgs(2),
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(snapshotCmd)

	alertsCmd.Flags().BoolVar(&alertsLocal, "local", false, "restrict to the area around --lat/--lng")
	alertsCmd.Flags().StringVar(&alertsLat, "lat", "", "latitude for --local")
	alertsCmd.Flags().StringVar(&alertsLng, "lng", "", "longitude for --local")
	alertsCmd.Flags().BoolVar(&alertsRefresh, "refresh", false, "bypass the cache and fetch fresh alerts")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	svc, _, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	var alerts []model.Alert
	if alertsLocal {
		lat, latErr := strconv.ParseFloat(alertsLat, 64)
		lng, lngErr := strconv.ParseFloat(alertsLng, 64)
		if latErr != nil || lngErr != nil {
			return fmt.Errorf("--local requires valid --lat and --lng")
		}
		alerts, err = svc.LocalAlerts(ctx, lat, lng, alertsRefresh)
	} else {
		alerts, err = svc.GlobalAlerts(ctx, alertsRefresh)
	}
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(alerts)
	}
	if len(alerts) == 0 {
		fmt.Println("No current alerts.")
		return nil
	}
	for _, a := range alerts {
		fmt.Printf("[%s] %s\n", a.Category, a.Title)
		fmt.Printf("  %s, %s", a.Location, a.Country)
		if a.Lat != nil && a.Lng != nil {
			fmt.Printf(" (%.4f, %.4f)", *a.Lat, *a.Lng)
		}
		fmt.Println()
		fmt.Printf("  %s\n", a.DetailedInfo)
		fmt.Printf("  Threat: %s\n", a.ThreatAnalysis)
		for _, src := range a.Sources {
			fmt.Printf("  Source: %s (%s)\n", src.Title, src.URI)
		}
		fmt.Println()
	}
	return nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	snapshot, err := svc.CitySnapshot(ctx, args[0], args[1], resolveLanguage(cfg))
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(snapshot)
	}
	fmt.Printf("Public health snapshot: %s, %s\n", snapshot.CityName, snapshot.Country)
	fmt.Printf("%s\n\n%s\n\n", snapshot.LastUpdated, snapshot.OverallSummary)
	for _, d := range snapshot.Diseases {
		fmt.Printf("%s [%s]\n", d.Name, d.Trend)
		fmt.Printf("  %s\n", d.Summary)
		fmt.Printf("  Cases: %s\n", d.ReportedCases)
		fmt.Printf("  Affected: %s\n\n", d.AffectedDemographics)
	}
	for _, src := range snapshot.Sources {
		fmt.Printf("Source: %s (%s)\n", src.Title, src.URI)
	}
	fmt.Printf("\n%s\n", snapshot.DataDisclaimer)
	return nil
}
