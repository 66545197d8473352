package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/perturbia/perturbia/internal/cache"
	"github.com/perturbia/perturbia/internal/model"
	"github.com/perturbia/perturbia/internal/nlp"
	"github.com/perturbia/perturbia/internal/perturb"
	"github.com/perturbia/perturbia/internal/pipeline"
)

var (
	inputPath     string
	outputPath    string
	seed          uint64
	maxPerturbed  int
	typesCSV      string
	orderMode     string
	workers       int
	sentenceLevel bool
	stripHTML     bool
	nlpProvider   string
	lexiconDir    string
	noCache       bool
	compact       bool
)

// perturbCmd represents the perturb command
var perturbCmd = &cobra.Command{
	Use:   "perturb",
	Short: "Apply one meaning-preserving perturbation to each statement",
	Long: `Perturb reads a batch of {"statement": ...} records and rewrites each
statement's surface form without changing what it asserts:
- Dates switch between spelled and numeric forms
- Numbers switch between compact and expanded forms
- Two entities in a list trade places
- A content word gives way to a synonym

Each statement receives at most one edit, recorded in the output next to
the original and updated text. Statements nothing applies to pass through
unchanged. Malformed records are skipped and reported; they never abort
the batch.

Example:
  perturbia perturb -i statements.json -o perturbed.json
  perturbia perturb -i statements.json --seed 7 --types date_format,synonym
  perturbia perturb -i statements.jsonl --workers 8 --max 100`,
	RunE: runPerturb,
}

func init() {
	rootCmd.AddCommand(perturbCmd)

	// Input/output flags
	perturbCmd.Flags().StringVarP(&inputPath, "input", "i", "", "input file (JSON array or JSON Lines)")
	perturbCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	perturbCmd.Flags().BoolVar(&compact, "compact", false, "emit output as a single JSON line")
	perturbCmd.Flags().BoolVar(&stripHTML, "strip-html", false, "extract visible text from HTML statements")

	// Perturbation flags
	perturbCmd.Flags().Uint64VarP(&seed, "seed", "s", 42, "RNG seed for reproducible runs")
	perturbCmd.Flags().IntVarP(&maxPerturbed, "max", "m", 0, "cap on perturbed statements (0 = no cap)")
	perturbCmd.Flags().StringVar(&typesCSV, "types", "", "comma-separated perturbation types to attempt")
	perturbCmd.Flags().StringVar(&orderMode, "order", "", "attempt order per statement: configured or random")
	perturbCmd.Flags().BoolVar(&sentenceLevel, "sentence-level", true, "perturb one sentence at a time")

	// NLP flags
	perturbCmd.Flags().StringVar(&nlpProvider, "nlp", "", "NLP provider: lexicon or openai (default: built-in fallbacks)")
	perturbCmd.Flags().StringVar(&lexiconDir, "lexicon-dir", "", "data directory for the lexicon provider")
	perturbCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the NLP lookup cache")

	// Concurrency flags
	perturbCmd.Flags().IntVar(&workers, "workers", 0, "number of concurrent workers")

	_ = perturbCmd.MarkFlagRequired("input")
}

func runPerturb(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Output.Verbose)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	adapter, err := nlp.NewAdapter(ctx, nlp.ConfigFromModel(cfg.NLP), buildCache(cfg), logger)
	if err != nil {
		return err
	}

	engine, err := perturb.NewEngine(cfg.Perturbation, adapter, logger)
	if err != nil {
		return err
	}

	printBanner(cfg)

	load, err := pipeline.Load(inputPath, cfg.Input.StripHTML)
	if err != nil {
		return err
	}

	runner := pipeline.NewRunner(engine, cfg.Concurrency.Workers, cfg.Perturbation.Max, logger)
	results, report := runner.Run(ctx, load)
	report.Backend = adapter.BackendName()
	report.Degraded = adapter.Degraded()

	if outputPath != "" {
		if err := pipeline.WriteFile(outputPath, results, cfg.Output.Pretty); err != nil {
			return err
		}
	} else {
		data, err := pipeline.Render(results, cfg.Output.Pretty)
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	printSummary(report)
	return nil
}

// buildConfig assembles the effective configuration: defaults, then the
// config file, then PERTURBIA_* environment variables, then flags.
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	if cfgReadErr != nil {
		return nil, fmt.Errorf("read config file: %w", cfgReadErr)
	}

	cfg := model.DefaultConfig()

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Perturbation.Seed = seed
	}
	if flags.Changed("max") {
		cfg.Perturbation.Max = maxPerturbed
	}
	if flags.Changed("types") {
		cfg.Perturbation.EnabledTypes = splitTypes(typesCSV)
	}
	if flags.Changed("order") {
		cfg.Perturbation.Order = orderMode
	}
	if flags.Changed("sentence-level") {
		cfg.Perturbation.SentenceLevel = sentenceLevel
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
	if flags.Changed("strip-html") {
		cfg.Input.StripHTML = stripHTML
	}
	if flags.Changed("nlp") {
		cfg.NLP.Provider = nlpProvider
	}
	if flags.Changed("lexicon-dir") {
		cfg.NLP.LexiconDir = lexiconDir
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("compact") {
		cfg.Output.Pretty = !compact
	}

	// The key comes from the environment only, never from config files
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.NLP.OpenAI.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// splitTypes parses the --types flag value
func splitTypes(csv string) []string {
	var types []string
	for _, t := range strings.Split(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	return types
}

// buildCache assembles the NLP lookup cache. A configured directory adds
// a persistent disk layer under the in-memory one.
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	ttl := cfg.Cache.CacheTTL()
	if cfg.Cache.Dir != "" {
		return cache.NewLayeredCache(ttl, cfg.Cache.Dir, ttl)
	}
	return cache.NewMemoryCache(ttl, 10*time.Minute)
}

func printBanner(cfg *model.Config) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Perturbia Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", inputPath)
	fmt.Fprintf(os.Stderr, "  Types:        %s\n", strings.Join(cfg.Perturbation.EnabledTypes, ", "))
	fmt.Fprintf(os.Stderr, "  Order:        %s\n", cfg.Perturbation.Order)
	fmt.Fprintf(os.Stderr, "  Seed:         %d\n", cfg.Perturbation.Seed)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	if cfg.Perturbation.Max > 0 {
		fmt.Fprintf(os.Stderr, "  Max:          %d\n", cfg.Perturbation.Max)
	}
	if cfg.NLP.Provider != "" {
		fmt.Fprintf(os.Stderr, "  NLP:          %s\n", cfg.NLP.Provider)
	}
	fmt.Fprintf(os.Stderr, "\n")
}

func printSummary(report *pipeline.RunReport) {
	backend := report.Backend
	if report.Degraded {
		backend += " (degraded)"
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:      %d records\n", report.Total)
	fmt.Fprintf(os.Stderr, "  Perturbed:  %d\n", report.Perturbed)
	fmt.Fprintf(os.Stderr, "  Unchanged:  %d\n", report.Processed-report.Perturbed)
	if report.Capped > 0 {
		fmt.Fprintf(os.Stderr, "  Capped:     %d\n", report.Capped)
	}
	fmt.Fprintf(os.Stderr, "  Backend:    %s\n", backend)
	fmt.Fprintf(os.Stderr, "  Duration:   %v\n", report.Duration.Round(time.Millisecond))
	if outputPath != "" {
		fmt.Fprintf(os.Stderr, "  Output:     %s\n", outputPath)
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "  ✗ Skipped %d malformed record(s) at indices %v\n", len(report.Skipped), report.Skipped)
	}
	fmt.Fprintf(os.Stderr, "\n")
}
