package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mvella/casabuild/internal/config"
	"github.com/mvella/casabuild/internal/pipeline"
)

var buildCommand = &cobra.Command{
	Use:   "build",
	Short: "Run one feed-to-site build",
	Long: `Downloads the listing feed, renders the property cards, splices them into
the site template and publishes the result.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runBuildCmd,
}

var (
	buildConfigPath  string
	buildFeedURL     string
	buildDialect     string
	buildTemplate    string
	buildOutput      string
	buildRunRecord   string
	buildDetailBase  string
	buildContactURL  string
	buildSiteDir     string
	buildCooldown    int
	buildTimeout     int
	buildRetries     int
	buildRetryDelay  int
	buildNoPublish   bool
	buildVerbose     bool
	buildDatabaseURL string
)

func init() {
	// Config file flag (processed first)
	buildCommand.Flags().StringVar(&buildConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	buildCommand.Flags().StringVarP(&buildFeedURL, "feed-url", "f", "", "URL of the listing feed XML")
	buildCommand.Flags().StringVar(&buildDialect, "dialect", "", "Feed dialect: miogest or immobili")
	buildCommand.Flags().StringVarP(&buildTemplate, "template", "t", "", "Path to the site template")
	buildCommand.Flags().StringVarP(&buildOutput, "output", "o", "", "Path the generated page is written to")
	buildCommand.Flags().StringVar(&buildRunRecord, "run-record", "", "Path of the last-build record file")
	buildCommand.Flags().StringVar(&buildDetailBase, "detail-base-url", "", "Base URL for listing detail links")
	buildCommand.Flags().StringVar(&buildContactURL, "contact-url", "", "Contact page URL shown on each card (optional)")
	buildCommand.Flags().StringVar(&buildSiteDir, "site-dir", "", "Git working copy the output is committed in")
	buildCommand.Flags().IntVar(&buildCooldown, "cooldown", 0, "Minimum minutes between builds (0 disables)")
	buildCommand.Flags().IntVar(&buildTimeout, "timeout", 0, "Per-request timeout in seconds")
	buildCommand.Flags().IntVar(&buildRetries, "retries", 0, "Fetch attempts before giving up")
	buildCommand.Flags().IntVar(&buildRetryDelay, "retry-delay", 0, "Base retry delay in seconds")
	buildCommand.Flags().BoolVar(&buildNoPublish, "no-publish", false, "Write the output but skip git commit and push")
	buildCommand.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "Print detailed build information")

	// Database URL for run-record persistence
	buildCommand.Flags().StringVar(&buildDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(buildCommand)
}

func runBuildCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if buildConfigPath != "" {
		loadedCfg, err := config.LoadConfig(buildConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
		if buildVerbose {
			log.Info("loaded config", "path", buildConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("feed-url") {
		cfg.FeedURL = buildFeedURL
	}
	if cmd.Flags().Changed("dialect") {
		cfg.Dialect = buildDialect
	}
	if cmd.Flags().Changed("template") {
		cfg.Template = buildTemplate
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = buildOutput
	}
	if cmd.Flags().Changed("run-record") {
		cfg.RunRecord = buildRunRecord
	}
	if cmd.Flags().Changed("detail-base-url") {
		cfg.DetailBaseURL = buildDetailBase
	}
	if cmd.Flags().Changed("contact-url") {
		cfg.ContactURL = buildContactURL
	}
	if cmd.Flags().Changed("site-dir") {
		cfg.SiteDir = buildSiteDir
	}
	// Timing flags set the pointer so an explicit zero survives the
	// defaults merge below.
	if cmd.Flags().Changed("cooldown") {
		cfg.CooldownMinutes = &buildCooldown
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = &buildTimeout
	}
	if cmd.Flags().Changed("retries") {
		cfg.Retries = &buildRetries
	}
	if cmd.Flags().Changed("retry-delay") {
		cfg.RetryDelaySeconds = &buildRetryDelay
	}
	if cmd.Flags().Changed("no-publish") {
		cfg.NoPublish = buildNoPublish
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = buildVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = buildDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	// Step 4: Validate
	if cfg.FeedURL == "" {
		return fmt.Errorf("--feed-url is required (via flag or config)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	opts, cleanup, err := pipelineOptions(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	res := pipeline.Run(ctx, opts)
	if res.ExitCode() != 0 {
		return res.Err
	}
	if res.Err != nil {
		// Degraded runs keep the previous output and exit clean; the error
		// still goes to the log.
		log.Warn("build degraded", "err", res.Err)
	}
	return nil
}
