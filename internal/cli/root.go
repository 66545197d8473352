package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	verbose    bool
	cfgReadErr error // Deferred to RunE; cobra initializers cannot fail
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "perturbia",
	Short: "Perturbia - Meaning-preserving statement perturbation",
	Long: `Perturbia rewrites the surface form of factual statements without
changing what they assert.

Each input statement receives at most one edit: a date changes format,
a number switches between compact and expanded notation, two entities in
a list trade places, or a content word gives way to a synonym. Every
edit is recorded so downstream consumers can see exactly what changed.

Runs are reproducible: the same input and seed produce byte-identical
output, whatever the worker count.`,
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
	Long:  `Display the version number and build information for Perturbia.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("perturbia v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.perturbia/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	// .env is optional and never overrides real environment variables
	_ = godotenv.Load()

	setDefaults()

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
		viper.AddConfigPath(filepath.Join(home, ".perturbia"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PERTURBIA_*
	viper.SetEnvPrefix("PERTURBIA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in. A missing discovered file is
	// fine (defaults apply); anything else is a configuration error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			cfgReadErr = err
		}
	} else if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	// Unmarshal only sees env values for keys it knows, so bind them all
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}
}

// setDefaults registers every configuration key with viper. Values mirror
// model.DefaultConfig so partial config files and PERTURBIA_* variables
// overlay cleanly.
func setDefaults() {
	viper.SetDefault("perturbation.enabled_types", []string{"date_format", "entity_reorder", "number_rephrase", "synonym"})
	viper.SetDefault("perturbation.order", "configured")
	viper.SetDefault("perturbation.sentence_level", true)
	viper.SetDefault("perturbation.seed", 42)
	viper.SetDefault("perturbation.max", 0)
	viper.SetDefault("nlp.provider", "")
	viper.SetDefault("nlp.lexicon_dir", "")
	viper.SetDefault("nlp.openai.model", "gpt-4o-mini")
	viper.SetDefault("nlp.openai.base_url", "")
	viper.SetDefault("nlp.openai.timeout_seconds", 30)
	viper.SetDefault("nlp.openai.requests_per_second", 4)
	viper.SetDefault("nlp.openai.burst", 2)
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.ttl_minutes", 1440)
	viper.SetDefault("concurrency.workers", 1)
	viper.SetDefault("input.strip_html", false)
	viper.SetDefault("output.pretty", true)
}
