// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/psg/internal/apperr"
	"github.com/starford/psg/internal/journal"
	"github.com/starford/psg/internal/server"
	"github.com/starford/psg/internal/site"
	"github.com/starford/psg/internal/sse"
	"github.com/starford/psg/internal/watch"
)

// historyLimit is the number of runs printed by the history command.
const historyLimit = 20

// Run executes the selected command with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdout:    os.Stdout,
		logOutput: os.Stderr,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.command == CommandHelp {
		fmt.Fprint(app.stdout, UsageText)
		return apperr.ErrUsage
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Debug("Configuration loaded",
		slog.String("command", app.command.String()),
		slog.String("source", cfg.Site.Source),
		slog.String("output", cfg.Site.Output),
		slog.String("engine", cfg.Converter.Engine),
		slog.Int("workers", cfg.Build.Workers),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if app.command == CommandHistory {
		return app.history()
	}

	if err := site.CheckProject(cfg.Site.Header, cfg.Site.Footer, cfg.Site.Source); err != nil {
		return err
	}

	switch app.command {
	case CommandClean:
		if err := site.Clean(cfg.Site.Output); err != nil {
			return err
		}
		logger.Info("Output removed", slog.String("output", cfg.Site.Output))
		return nil
	case CommandBuild, CommandServe:
	default:
		return fmt.Errorf("unknown command %q", app.command)
	}

	jr, err := openJournal(cfg.Journal)
	if err != nil {
		return err
	}
	if jr != nil {
		defer jr.Close()
	}

	b := site.NewBuilder(site.Project{
		SourceDir:  cfg.Site.Source,
		OutputDir:  cfg.Site.Output,
		HeaderPath: cfg.Site.Header,
		FooterPath: cfg.Site.Footer,
	}, newEngine(cfg.Converter), cfg.Build.Workers, logger)

	if _, err := runBuild(ctx, b, jr, journal.TriggerCLI, logger); err != nil {
		return err
	}
	if app.command == CommandBuild {
		return nil
	}
	return app.serve(ctx, b, jr, logger)
}

func newEngine(cfg ConverterConfig) site.Engine {
	if cfg.Engine == EngineGoldmark {
		return site.NewGoldmarkEngine()
	}
	return site.NewPandocEngine(cfg.Command, cfg.From, cfg.To)
}

func openJournal(cfg JournalConfig) (*journal.DB, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	db, err := journal.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("init journal: %w", err)
	}
	return db, nil
}

// runBuild runs one build, logs its outcome and journals it when jr is set.
func runBuild(ctx context.Context, b *site.Builder, jr *journal.DB, trigger string, logger *slog.Logger) (site.Stats, error) {
	start := time.Now()
	stats, err := b.Build(ctx)
	if err != nil {
		logger.Error("Build failed", slog.String("error", err.Error()))
	} else {
		logger.Info("Build finished", stats.LogAttrs()...)
	}

	if jr != nil {
		run := journal.Run{
			StartedAt: start,
			Duration:  stats.Duration,
			Trigger:   trigger,
			Dirs:      stats.Dirs,
			Converted: stats.Converted,
			Copied:    stats.Copied,
			Skipped:   stats.Skipped,
		}
		if err != nil {
			run.Error = err.Error()
		}
		if _, jErr := jr.Record(run); jErr != nil {
			logger.Warn("journal: record failed", slog.String("error", jErr.Error()))
		}
	}
	return stats, err
}

func (a *application) serve(ctx context.Context, b *site.Builder, jr *journal.DB, logger *slog.Logger) error {
	cfg := a.config

	var broker *sse.Broker
	var events http.Handler
	if cfg.Serve.Watch {
		broker = sse.NewBroker(0)
		defer broker.Close()
		events = broker
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           server.NewRouter(cfg.Site.Output, events),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if broker != nil {
		// Event streams never end on their own; close them so Shutdown can finish.
		httpServer.RegisterOnShutdown(broker.Close)
	}

	ln, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", httpServer.Addr, err)
	}

	fmt.Fprintf(a.stdout, "Serving directory at %s\n", cfg.App.HTTP.URL())
	logger.Info("Server starting...", slog.String("http_address", httpServer.Addr))

	g, gCtx := errgroup.WithContext(ctx)

	if broker != nil {
		g.Go(func() error {
			return watch.Watch(gCtx, watch.Config{
				SourceDir: cfg.Site.Source,
				Files:     []string{cfg.Site.Header, cfg.Site.Footer},
				Debounce:  cfg.Serve.Debounce,
			}, logger, func(ctx context.Context) error {
				stats, err := runBuild(ctx, b, jr, journal.TriggerWatch, logger)
				broker.PublishBuild(sse.BuildResult{
					Converted: stats.Converted,
					Copied:    stats.Copied,
					Skipped:   stats.Skipped,
					Duration:  stats.Duration,
					Err:       err,
				})
				return err
			})
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errServeStopped
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errServeStopped) {
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errServeStopped cancels the serve group once shutdown has run, so the
// watcher stops with the server.
var errServeStopped = errors.New("serve stopped")

func (a *application) history() error {
	if !a.config.Journal.Enabled() {
		return fmt.Errorf("set journal.path in the config file: %w", apperr.ErrJournalDisabled)
	}
	jr, err := journal.Open(a.config.Journal.Path)
	if err != nil {
		return err
	}
	defer jr.Close()

	runs, err := jr.Recent(historyLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tTRIGGER\tDURATION\tCONVERTED\tCOPIED\tSKIPPED\tRESULT")
	for _, r := range runs {
		result := "ok"
		if r.Failed() {
			result, _, _ = strings.Cut(r.Error, "\n")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			r.StartedAt.Local().Format(time.DateTime), r.Trigger, r.Duration,
			r.Converted, r.Copied, r.Skipped, result)
	}
	return tw.Flush()
}
