package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"exportlint/internal/core/app"
	"exportlint/internal/core/config"
	apperrors "exportlint/internal/core/errors"
	"exportlint/internal/engine/analyzer"
	"exportlint/internal/engine/parser"
	"exportlint/internal/shared/observability"
	"exportlint/internal/shared/version"
	"exportlint/internal/watcher"
)

var (
	configPath  = flag.String("config", "./exportlint.toml", "Path to config file")
	fix         = flag.Bool("fix", false, "Apply auto-fixes for fixable issues")
	dryRun      = flag.Bool("dry-run", false, "Preview fixes without modifying files")
	watch       = flag.Bool("watch", false, "Re-run analysis when sources change")
	metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (useful with -watch)")
	format      = flag.String("format", "", "Report format: console, json, html, markdown, csv")
	output      = flag.String("output", "", "Report output path (empty prints to stdout)")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// Exit codes: 0 clean, 1 error-severity issues found, 2 run failed.
const (
	exitClean  = 0
	exitIssues = 1
	exitFailed = 2
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("exportlint v%s\n", version.Version)
		os.Exit(exitClean)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeNotFound) && *configPath == "./exportlint.toml" {
			root := "."
			if flag.NArg() > 0 {
				root = flag.Arg(0)
			}
			cfg = config.Default(root)
		} else {
			slog.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(exitFailed)
		}
	}
	if flag.NArg() > 0 {
		cfg.Paths.ProjectRoot = flag.Arg(0)
	}

	svc, err := app.NewService(cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(exitFailed)
	}

	runOpts := app.RunOptions{
		Fix:        *fix,
		DryRun:     *dryRun,
		Format:     *format,
		OutputPath: *output,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *metricsAddr != "" {
		obs := observability.NewServer(*metricsAddr)
		if err := obs.Start(); err != nil {
			slog.Error("failed to start metrics server", "error", err)
			os.Exit(exitFailed)
		}
		defer obs.Stop(context.Background())
	}

	outcome, err := svc.Run(ctx, runOpts)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(exitFailed)
	}
	printConsole(outcome)

	if *watch {
		if err := runWatch(ctx, svc, cfg, runOpts); err != nil {
			slog.Error("watch mode failed", "error", err)
			os.Exit(exitFailed)
		}
		os.Exit(exitClean)
	}

	os.Exit(exitCode(outcome.Result))
}

func printConsole(outcome *app.RunOutcome) {
	// Reports with an output path are persisted by the run itself; only
	// pathless ones land on stdout.
	if outcome.Report.OutputPath == "" {
		fmt.Print(outcome.Report.Content)
	}
}

func runWatch(ctx context.Context, svc *app.Service, cfg *config.Config, runOpts app.RunOptions) error {
	rescan := make(chan []string, 1)
	w, err := watcher.NewWatcher(cfg.Watch.Debounce,
		parser.NewGrammarLoader(true),
		cfg.Exclude.Dirs, cfg.Exclude.Files,
		func(paths []string) {
			select {
			case rescan <- paths:
			default:
			}
		})
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(cfg.Paths.ProjectRoot); err != nil {
		return err
	}
	slog.Info("watching for changes", "root", cfg.Paths.ProjectRoot)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-rescan:
			slog.Debug("changes detected", "files", len(paths))
			outcome, err := svc.Run(ctx, runOpts)
			if err != nil {
				slog.Error("rescan failed", "error", err)
				continue
			}
			printConsole(outcome)
		}
	}
}

func exitCode(result *analyzer.ProjectResult) int {
	if result.Summary.ErrorCount > 0 {
		return exitIssues
	}
	return exitClean
}
