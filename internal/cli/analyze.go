package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/store"
)

var (
	locationName string
	imageOut     string
	cmdTimeout   time.Duration
)

// locationCmd represents the location command
var locationCmd = &cobra.Command{
	Use:   "location <lat> <lng> | <place>",
	Short: "Analyze health risks around a location",
	Long: `Analyze environmental health hazards and associated diseases for a
location, given either coordinates or a free-text place name.

Alongside the structured report, an illustrative image of the location
is generated when the provider supports it; the analysis never fails
because the image did.

Example:
  geosick location 19.0760 72.8777
  geosick location "Dharavi, Mumbai" --image-out dharavi.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runLocation,
}

// imageCmd represents the image command
var imageCmd = &cobra.Command{
	Use:   "image <file>",
	Short: "Analyze health hazards visible in a photo",
	Long: `Analyze a photo of surroundings for visible environmental health
hazards and the diseases they can cause.

Example:
  geosick image backyard.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runImage,
}

// prescriptionCmd represents the prescription command
var prescriptionCmd = &cobra.Command{
	Use:   "prescription <file>",
	Short: "Transcribe and explain a prescription image",
	Long: `Read a photo or scan of a medical prescription and produce a plain-
language summary: the medicines, their dosages, and precautions.

Example:
  geosick prescription scan.png`,
	Args: cobra.ExactArgs(1),
	RunE: runPrescription,
}

func init() {
	rootCmd.AddCommand(locationCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(prescriptionCmd)

	locationCmd.Flags().StringVar(&locationName, "name", "", "known place name to include in the analysis")
	locationCmd.Flags().StringVar(&imageOut, "image-out", "", "write the generated location image to this file")

	rootCmd.PersistentFlags().DurationVar(&cmdTimeout, "timeout", 3*time.Minute, "overall command timeout")
}

func runLocation(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	lang := resolveLanguage(cfg)

	var lat, lng float64
	knownName := locationName
	if len(args) == 2 {
		if lat, err = strconv.ParseFloat(args[0], 64); err != nil {
			return fmt.Errorf("invalid latitude %q", args[0])
		}
		if lng, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
	} else {
		// A single argument is a place description: resolve it first.
		resolved, err := svc.Geocode(ctx, args[0])
		if err != nil {
			return err
		}
		lat, lng = resolved.Lat, resolved.Lng
		if knownName == "" {
			knownName = resolved.FoundLocationName
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "Resolved %q to %s (%.4f, %.4f)\n", args[0], resolved.FoundLocationName, lat, lng)
		}
	}

	report, err := svc.AnalyzeLocation(ctx, lat, lng, lang, knownName)
	if err != nil {
		return err
	}

	if imageOut != "" && report.Image != nil {
		if err := os.WriteFile(imageOut, report.Image, 0644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote location image: %s\n", imageOut)
	}

	recordActivity(store.ActivityLocation, report.Analysis.LocationName, lang, report.Analysis)

	if asJSON {
		return printJSON(report.Analysis)
	}
	fmt.Printf("Location: %s\n\n", report.Analysis.LocationName)
	printAnalysis(model.Analysis{
		Hazards:  report.Analysis.Hazards,
		Diseases: report.Analysis.Diseases,
		Summary:  report.Analysis.Summary,
	})
	return nil
}

func runImage(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	data, mimeType, err := readImageFile(args[0])
	if err != nil {
		return err
	}

	lang := resolveLanguage(cfg)
	analysis, err := svc.AnalyzeImage(ctx, data, mimeType, lang)
	if err != nil {
		return err
	}

	recordActivity(store.ActivityImage, "Photo analysis: "+args[0], lang, analysis)

	if asJSON {
		return printJSON(analysis)
	}
	printAnalysis(*analysis)
	return nil
}

func runPrescription(cmd *cobra.Command, args []string) error {
	svc, cfg, err := buildService()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()

	data, mimeType, err := readImageFile(args[0])
	if err != nil {
		return err
	}

	lang := resolveLanguage(cfg)
	prescription, err := svc.AnalyzePrescription(ctx, data, mimeType, lang)
	if err != nil {
		return err
	}

	recordActivity(store.ActivityPrescription, "Prescription: "+args[0], lang, prescription)

	if asJSON {
		return printJSON(prescription)
	}
	fmt.Printf("Summary: %s\n\n", prescription.Summary)
	if len(prescription.Medicines) > 0 {
		fmt.Println("Medicines:")
		for _, m := range prescription.Medicines {
			fmt.Printf("  - %s: %s\n", m.Name, m.Dosage)
		}
		fmt.Println()
	}
	if len(prescription.Precautions) > 0 {
		fmt.Println("Precautions:")
		for _, p := range prescription.Precautions {
			fmt.Printf("  - %s\n", p)
		}
	}
	return nil
}

// printAnalysis renders the shared hazards/diseases/summary shape.
func printAnalysis(a model.Analysis) {
	fmt.Printf("Summary: %s\n\n", a.Summary)
	if len(a.Hazards) > 0 {
		fmt.Println("Hazards:")
		for _, h := range a.Hazards {
			fmt.Printf("  - %s: %s\n", h.Hazard, h.Description)
		}
		fmt.Println()
	}
	if len(a.Diseases) > 0 {
		fmt.Println("Potential diseases:")
		for _, d := range a.Diseases {
			fmt.Printf("  - %s (%s)\n", d.Name, d.Cause)
			for _, p := range d.Precautions {
				fmt.Printf("      precaution: %s\n", p)
			}
		}
	}
}

// readImageFile loads an image and infers its MIME type from the
// extension.
func readImageFile(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	mimeType := "image/jpeg"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		mimeType = "image/png"
	case ".webp":
		mimeType = "image/webp"
	case ".gif":
		mimeType = "image/gif"
	}
	return data, mimeType, nil
}

// recordActivity appends a history entry; history is best-effort and
// never fails the command.
func recordActivity(kind store.ActivityKind, title, lang string, result interface{}) {
	s, err := openStore()
	if err != nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if _, err := s.AppendActivity(store.ActivityEntry{
		Kind:     kind,
		Title:    title,
		Data:     data,
		Language: lang,
	}); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "Could not record activity: %v\n", err)
	}
}
