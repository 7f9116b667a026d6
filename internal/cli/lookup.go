package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/model"
)

// geocodeCmd represents the geocode command
var geocodeCmd = &cobra.Command{
	Use:   "geocode <place>",
	Short: "Resolve a place description to coordinates",
	Long: `Resolve a free-text place description to precise coordinates and the
full official name of the location.

Example:
  geosick geocode "the big park in the middle of Manhattan"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGeocode,
}

// facilitiesCmd represents the facilities command
var facilitiesCmd = &cobra.Command{
	Use:   "facilities <lat> <lng> | <place>",
	Short: "Find hospitals, clinics and pharmacies nearby",
	Long: `Find medical facilities near a location, sorted nearest-first.

Example:
  geosick facilities 19.0760 72.8777
  geosick facilities "Andheri, Mumbai"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFacilities,
}

// forecastCmd represents the forecast command
var forecastCmd = &cobra.Command{
	Use:   "forecast <lat> <lng> | <place>",
	Short: "Daily health forecast for a location",
	Long: `Produce today's health outlook for a location: air quality, pollen,
UV and heat risk factors with practical recommendations.

Example:
  geosick forecast 51.5074 -0.1278`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	rootCmd.AddCommand(facilitiesCmd)
	rootCmd.AddCommand(forecastCmd)
}

// resolveCoordinate turns "lat lng" args or a place description into a
// coordinate.
func resolveCoordinate(ctx context.Context, args []string, geocode func(context.Context, string) (*model.GeocodeResult, error)) (model.Coordinate, error) {
	if len(args) == 2 {
		lat, latErr := strconv.ParseFloat(args[0], 64)
		lng, lngErr := strconv.ParseFloat(args[1], 64)
		if latErr == nil && lngErr == nil {
			return model.Coordinate{Lat: lat, Lng: lng}, nil
		}
	}
	resolved, err := geocode(ctx, strings.Join(args, " "))
	if err != nil {
		return model.Coordinate{}, err
	}
	return resolved.Coordinate(), nil
}

func runGeocode(cmd *cobra.Command, args []string) error {
	svc, _, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	result, err := svc.Geocode(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(result)
	}
	fmt.Printf("%s\n%.6f, %.6f\n", result.FoundLocationName, result.Lat, result.Lng)
	return nil
}

func runFacilities(cmd *cobra.Command, args []string) error {
	svc, _, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	coord, err := resolveCoordinate(ctx, args, svc.Geocode)
	if err != nil {
		return err
	}

	facilities, err := svc.FindFacilities(ctx, coord)
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(facilities)
	}
	if len(facilities) == 0 {
		fmt.Println("No facilities found nearby.")
		return nil
	}
	for _, f := range facilities {
		fmt.Printf("%-10s %-40s %5.1f km  (%.5f, %.5f)\n", f.Type, f.Name, f.DistanceKm, f.Lat, f.Lng)
	}
	return nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	coord, err := resolveCoordinate(ctx, args, svc.Geocode)
	if err != nil {
		return err
	}

	forecast, err := svc.HealthForecast(ctx, coord, resolveLanguage(cfg))
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(forecast)
	}
	fmt.Printf("Health forecast for %s\n\n%s\n\n", forecast.LocationName, forecast.Summary)
	for _, rf := range forecast.RiskFactors {
		fmt.Printf("  [%s] %s: %s\n", rf.Level, rf.Name, rf.Description)
	}
	if len(forecast.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, r := range forecast.Recommendations {
			fmt.Printf("  - %s\n", r)
		}
	}
	return nil
}
