package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvella/casabuild/internal/config"
	"github.com/mvella/casabuild/internal/pipeline"
	"github.com/mvella/casabuild/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP server that triggers builds on demand",
	Long: `Starts a small HTTP API: POST /build runs one build, GET /status returns
the last run record, GET /healthz reports liveness. One build runs at a
time; a concurrent trigger answers 409.`,
	RunE: runServeCmd,
}

var (
	serveConfigPath string
	serveListenAddr string
	serveNoPublish  bool
	serveVerbose    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "Address to listen on (default :8080)")
	serveCmd.Flags().BoolVar(&serveNoPublish, "no-publish", false, "Write the output but skip git commit and push")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed build information")
	rootCmd.AddCommand(serveCmd)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	if cmd.Flags().Changed("listen") {
		cfg.ListenAddr = serveListenAddr
	}
	if cmd.Flags().Changed("no-publish") {
		cfg.NoPublish = serveNoPublish
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = serveVerbose
	}

	cfg = cfg.MergeWithDefaults(config.DefaultConfig())
	if cfg.FeedURL == "" {
		return fmt.Errorf("feed_url must be set in the config file")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, cleanup, err := pipelineOptions(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := server.New(server.Config{
		Addr:  cfg.ListenAddr,
		Store: opts.Store,
		Build: func(ctx context.Context) *pipeline.Result {
			return pipeline.Run(ctx, opts)
		},
	})
	return srv.Start(ctx)
}
