// Package cli provides the command-line interface for driveline.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/driveline/driveline-go/internal/config"
	"github.com/driveline/driveline-go/internal/db"
	"github.com/driveline/driveline-go/internal/fallback"
	"github.com/driveline/driveline-go/internal/handlers"
	"github.com/driveline/driveline-go/internal/handover"
	"github.com/driveline/driveline-go/internal/llm"
	"github.com/driveline/driveline-go/internal/metrics"
	"github.com/driveline/driveline-go/internal/notify"
	"github.com/driveline/driveline-go/internal/orchestrator"
	"github.com/driveline/driveline-go/internal/routing"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config, logger, and db client
	cfg         config.Config
	logger      *slog.Logger
	closeLogger func() error
	dbClient    *db.Client
	collector   = metrics.NewCollector()

	// Lazy-initialized LLM models
	primaryModel  *llm.Model
	fallbackModel *llm.Model
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "driveline",
	Short: "Dealership conversation routing core",
	Long: `Driveline routes inbound dealership customer messages: it retrieves
grounding context, classifies intent and sentiment, dispatches to the right
response handler, and escalates to humans when needed.

The route command exercises the full pipeline for a single message; handover,
reconcile, and health expose the operational surface.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip DB connection for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		// Load config
		cfg = config.Load()
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)

		// Connect to database
		ctx := context.Background()
		dbCfg := db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}

		var err error
		dbClient, err = db.NewClient(ctx, dbCfg, logger)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}

		// Initialize schema
		if err := dbClient.InitSchema(ctx); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// getModels initializes the generation models on first use. The primary
// model is optional; routing degrades to the fallback path without it.
func getModels() (*llm.Model, *llm.Model, error) {
	if fallbackModel == nil {
		var err error
		fallbackModel, err = llm.NewFallbackModel(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("init fallback model: %w", err)
		}
	}
	if primaryModel == nil {
		var err error
		primaryModel, err = llm.NewModel(cfg)
		if err != nil {
			logger.Warn("primary model unavailable, fallback path only", "error", err)
			primaryModel = nil
		}
	}
	return primaryModel, fallbackModel, nil
}

// getHandoverController wires the handover controller against the live db.
func getHandoverController() *handover.Controller {
	notifier := notify.Notifier(notify.NewLogNotifier(logger))
	if url := os.Getenv("DRIVELINE_WEBHOOK_URL"); url != "" {
		notifier = notify.NewWebhookNotifier(url, logger)
	}
	return handover.NewController(dbClient, notifier, collector, logger, cfg.DefaultHandoverRecipients)
}

// getOrchestrator wires the full routing pipeline.
func getOrchestrator() (*orchestrator.Orchestrator, error) {
	registry, err := handlers.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load handler profiles: %w", err)
	}

	primary, secondary, err := getModels()
	if err != nil {
		return nil, err
	}

	var primaryGen fallback.Generator
	if primary != nil {
		primaryGen = primary
	}
	responder := fallback.NewController(primaryGen, secondary, collector, logger, fallback.Options{
		HybridEnabled:  cfg.HybridEnabled,
		PrimaryTimeout: cfg.PrimaryTimeout,
		MaxRetries:     cfg.MaxRetries,
		Preference:     cfg.PrimaryPreference,
	})

	var classifier routing.Classifier
	if primary != nil {
		classifier = primary
	}
	analyzer := routing.NewAnalyzer(classifier, collector, logger)

	return orchestrator.New(orchestrator.Deps{
		Analyzer:   analyzer,
		Registry:   registry,
		Responder:  responder,
		Handover:   getHandoverController(),
		Store:      dbClient,
		Summarizer: secondary,
		Analytics:  dbClient,
		Collector:  collector,
		Logger:     logger,
	}, orchestrator.Options{
		AdvancedRoutingEnabled:   cfg.AdvancedRoutingEnabled,
		RoutingOverrideThreshold: cfg.RoutingOverrideThreshold,
		MaxRetrievedDocuments:    cfg.MaxRetrievedDocuments,
		DealershipInfoEnabled:    cfg.DealershipInfoEnabled,
	}), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(handoverCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(analyticsCmd)
}
