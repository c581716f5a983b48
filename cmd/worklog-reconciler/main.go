package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"

	"worklog-reconciler/internal/common"
	"worklog-reconciler/internal/interfaces"
	"worklog-reconciler/internal/services"
)

const (
	serviceName    = "worklog-reconciler"
	serviceVersion = "1.0.0"
)

func main() {
	// Parse command line flags
	var (
		configPath     = flag.String("config", "", "Path to configuration file")
		mode           = flag.String("mode", "dev", "Environment mode: 'dev', 'development', 'prod', or 'production'")
		quiet          = flag.Bool("quiet", false, "Suppress banner output")
		version        = flag.Bool("version", false, "Show version information")
		help           = flag.Bool("help", false, "Show help message")
		validateConfig = flag.Bool("validate", false, "Validate configuration file and exit")

		once      = flag.Bool("once", false, "Run one reconciliation and exit instead of serving")
		fromArg   = flag.String("from", "", "Start date for -once (YYYY-MM-DD)")
		toArg     = flag.String("to", "", "End date for -once (YYYY-MM-DD)")
		formatArg = flag.String("format", "", "Comma-separated report formats overriding the configuration")
		outputArg = flag.String("output", "", "Report output directory overriding the configuration")
	)
	flag.Parse()

	// Handle version flag
	if *version {
		fmt.Printf("%s v%s (build: %s)\n", serviceName, common.GetVersion(), common.GetBuild())
		os.Exit(0)
	}

	// Handle help flag
	if *help {
		showHelp()
		os.Exit(0)
	}

	// Parse environment from mode
	environment := parseMode(*mode)

	// Load configuration with priority: defaults -> TOML -> environment
	cfg, err := common.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Update environment from command line
	cfg.Reconciler.Environment = environment

	// Report overrides from command line
	if *formatArg != "" {
		cfg.Report.Formats = strings.Split(*formatArg, ",")
		for i := range cfg.Report.Formats {
			cfg.Report.Formats[i] = strings.TrimSpace(cfg.Report.Formats[i])
		}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -format value: %v\n", err)
			os.Exit(1)
		}
	}
	if *outputArg != "" {
		cfg.Report.OutputDir = *outputArg
	}

	// Handle validate flag
	if *validateConfig {
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	// Initialize logger
	if err := common.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := common.GetLogger()

	logger.Info().
		Str("version", common.GetVersion()).
		Str("build", common.GetBuild()).
		Str("environment", environment).
		Msg("Starting Worklog Reconciler Service")

	logger.Info().
		Str("config_path", *configPath).
		Msg("Configuration loaded")

	// Display startup banner after initial log messages (to ensure log file exists)
	if !*quiet {
		runMode := "Server"
		if *once {
			runMode = "Once"
		}
		common.PrintBanner(serviceName, environment, runMode, common.GetLogFilePath())
	}

	// Initialize services
	logger.Info().Msg("Initializing services...")

	storage, err := services.NewStorage(&cfg.Storage)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize storage")
		os.Exit(1)
	}
	defer storage.Close()

	source, err := services.NewClockifyClient(&cfg.Clockify)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize Clockify client")
		os.Exit(1)
	}

	catalog, err := services.NewDevOpsClient(&cfg.DevOps)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize Azure DevOps client")
		os.Exit(1)
	}

	reconciler, err := services.NewReconciler(cfg, source, catalog, storage, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize reconciler")
		os.Exit(1)
	}

	logger.Info().Msg("Services initialized successfully")

	if *once {
		if err := runOnce(reconciler, logger, *fromArg, *toArg); err != nil {
			logger.Error().Err(err).Msg("Reconciliation run failed")
			os.Exit(1)
		}
	} else {
		runServerMode(cfg, storage, reconciler, logger)
	}

	logger.Info().Msg("Worklog Reconciler Service shutdown complete")
}

// runOnce performs a single reconciliation run. An omitted range
// defaults to the last seven days.
func runOnce(reconciler *services.Reconciler, logger arbor.ILogger, fromArg, toArg string) error {
	now := time.Now()
	from := now.AddDate(0, 0, -7).Truncate(24 * time.Hour)
	to := now

	if fromArg != "" {
		parsed, err := time.Parse("2006-01-02", fromArg)
		if err != nil {
			return fmt.Errorf("invalid -from date %q: %w", fromArg, err)
		}
		from = parsed
	}
	if toArg != "" {
		parsed, err := time.Parse("2006-01-02", toArg)
		if err != nil {
			return fmt.Errorf("invalid -to date %q: %w", toArg, err)
		}
		to = parsed.Add(24*time.Hour - time.Second)
	}
	if to.Before(from) {
		return fmt.Errorf("-to date is before -from date")
	}

	ctx := context.Background()
	summary, _, err := reconciler.Run(ctx, from, to, nil)
	if err != nil {
		return err
	}

	fmt.Printf("Reconciled %d entries: %d matched, %d unmatched (%.1f%% match rate)\n",
		summary.TotalEntries, summary.MatchedEntries, summary.UnmatchedEntries, summary.MatchRate*100)
	for _, path := range summary.OutputFiles {
		fmt.Printf("  %s\n", path)
	}
	for _, warning := range summary.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	return nil
}

func runServerMode(cfg *common.Config, storage interfaces.Storage, reconciler *services.Reconciler, logger arbor.ILogger) {
	logger.Info().Msg("Starting in server mode")

	webServer, err := services.NewWebServer(cfg, storage, reconciler, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create web server")
		return
	}

	ctx := context.Background()
	if err := webServer.Start(ctx); err != nil {
		logger.Error().Err(err).Msg("Failed to start web server")
		return
	}

	logger.Info().
		Int("port", cfg.Reconciler.Port).
		Msg("Web server started successfully")

	// Set up signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info().Msg("Server running - press Ctrl+C to stop")

	<-sigChan
	logger.Info().Msg("Shutdown signal received")

	if err := webServer.Stop(); err != nil {
		logger.Error().Err(err).Msg("Error stopping web server")
	}

	logger.Info().Msg("Server mode shutdown complete")
}

func parseMode(mode string) string {
	mode = strings.ToLower(mode)
	switch mode {
	case "prod", "production":
		return "production"
	case "dev", "development":
		return "development"
	default:
		return "development"
	}
}

func showHelp() {
	fmt.Printf("%s v%s - Clockify / Azure DevOps Reconciliation Service\n\n", serviceName, serviceVersion)
	fmt.Println("Usage:")
	fmt.Printf("  %s [flags]\n\n", os.Args[0])
	fmt.Println("Flags:")
	fmt.Println("  -mode string        Environment mode: 'dev', 'development', 'prod', or 'production' (default \"dev\")")
	fmt.Println("  -config string      Configuration file path")
	fmt.Println("  -once               Run one reconciliation and exit instead of serving")
	fmt.Println("  -from string        Start date for -once (YYYY-MM-DD, default 7 days ago)")
	fmt.Println("  -to string          End date for -once (YYYY-MM-DD, default today)")
	fmt.Println("  -format string      Comma-separated report formats (json,csv,html,xlsx)")
	fmt.Println("  -output string      Report output directory")
	fmt.Println("  -quiet              Suppress banner output")
	fmt.Println("  -version            Show version information")
	fmt.Println("  -help               Show help message")
	fmt.Println("  -validate           Validate configuration file and exit")
	fmt.Println("\nExamples:")
	fmt.Printf("  %s                                  # Run in server mode\n", os.Args[0])
	fmt.Printf("  %s -once -from 2026-08-01 -to 2026-08-15\n", os.Args[0])
	fmt.Printf("  %s -config /path/to/config.toml     # Use custom config file\n", os.Args[0])
}
