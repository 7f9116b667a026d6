// Package cli wires the capability orchestrators into the geosick
// command tree.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geosick/geosick/internal/cache"
	"github.com/geosick/geosick/internal/genai"
	"github.com/geosick/geosick/internal/model"
	"github.com/geosick/geosick/internal/service"
	"github.com/geosick/geosick/internal/store"
)

var (
	cfgFile  string
	verbose  bool
	noCache  bool
	language string
	asJSON   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "geosick",
	Short: "GeoSick - location-aware health risk analysis",
	Long: `GeoSick analyzes health risks from where you are and what you see.

It combines grounded AI retrieval with structured extraction to produce
location risk reports, photo and prescription analyses, symptom triage,
live health alerts, and city health snapshots.

GeoSick provides informational summaries, not medical diagnoses.
Always consult a healthcare professional for medical decisions.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for GeoSick.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("geosick v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.geosick/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "disable the result cache (force fresh calls)")
	rootCmd.PersistentFlags().StringVar(&language, "language", "", "response language (default: config or English)")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.geosick")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match GEOSICK_*
	viper.SetEnvPrefix("GEOSICK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, the config file and environment.
func loadConfig() model.Config {
	cfg := model.DefaultConfig()

	if v := viper.GetString("genai.provider"); v != "" {
		cfg.GenAI.Provider = v
	}
	if v := viper.GetString("genai.model"); v != "" {
		cfg.GenAI.Model = v
	}
	if v := viper.GetString("genai.image_model"); v != "" {
		cfg.GenAI.ImageModel = v
	}
	if v := viper.GetString("genai.base_url"); v != "" {
		cfg.GenAI.BaseURL = v
	}
	if v := viper.GetInt("genai.timeout"); v > 0 {
		cfg.GenAI.Timeout = v
	}
	if v := viper.GetInt("genai.max_tokens"); v > 0 {
		cfg.GenAI.MaxTokens = v
	}
	if v := viper.GetFloat64("genai.requests_per_second"); v > 0 {
		cfg.GenAI.RequestsPerSecond = v
	}
	if v := viper.GetInt("genai.max_attempts"); v > 0 {
		cfg.GenAI.MaxAttempts = v
	}
	if v := viper.GetDuration("genai.initial_delay"); v > 0 {
		cfg.GenAI.InitialDelay = v
	}
	if v := viper.GetString("cache.dir"); v != "" {
		cfg.Cache.Dir = v
	}
	if viper.GetBool("cache.disabled") || noCache {
		cfg.Cache.Disabled = true
	}
	if v := viper.GetInt("concurrency.geocode_workers"); v > 0 {
		cfg.Concurrency.GeocodeWorkers = v
	}
	if v := viper.GetString("language"); v != "" {
		cfg.Language = v
	}

	// API keys come from the provider's conventional variable.
	switch cfg.GenAI.Provider {
	case "openai":
		cfg.GenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	default:
		cfg.GenAI.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	return cfg
}

// newLogger builds the CLI logger. Verbose switches console output on
// at debug level; otherwise only warnings and errors reach stderr.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// buildService assembles the provider client, cache and orchestrators
// from the merged configuration.
func buildService() (*service.Service, model.Config, error) {
	cfg := loadConfig()

	if cfg.GenAI.APIKey == "" {
		envVar := "GEMINI_API_KEY"
		if cfg.GenAI.Provider == "openai" {
			envVar = "OPENAI_API_KEY"
		}
		return nil, cfg, fmt.Errorf("%s environment variable not set", envVar)
	}

	client, err := genai.NewClient(cfg.GenAI, newLogger())
	if err != nil {
		return nil, cfg, fmt.Errorf("create provider client: %w", err)
	}

	var results cache.Cache
	if cfg.Cache.Disabled {
		results = cache.Noop{}
	} else {
		dir := cfg.Cache.Dir
		if dir == "" {
			base, err := store.DefaultDir()
			if err != nil {
				return nil, cfg, err
			}
			dir = filepath.Join(base, "cache")
		}
		results = cache.NewLayeredCache(30*time.Minute, dir, 24*time.Hour)
	}

	return service.New(client, results, cfg, newLogger()), cfg, nil
}

// openStore opens the profile and history store.
func openStore() (*store.Store, error) {
	dir, err := store.DefaultDir()
	if err != nil {
		return nil, err
	}
	return store.New(dir)
}

// resolveLanguage picks the response language: flag, then profile,
// then config default.
func resolveLanguage(cfg model.Config) string {
	if language != "" {
		return language
	}
	if s, err := openStore(); err == nil {
		if p, err := s.Profile(); err == nil && p.Language != "" {
			return p.Language
		}
	}
	return cfg.Language
}

// printJSON renders any result as indented JSON on stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
