// Command mailbox-demo drives a mailbox against observable objects, either
// interactively or from a YAML scenario.
//
// Usage:
//
//	mailbox-demo [flags]
//
// Flags:
//
//	-script string     Run a YAML scenario instead of the console
//	-trace string      Write mailbox trace events to this file (.mblog)
//	-queue             Start with a serial delivery queue
//	-metrics string    Serve Prometheus metrics on this address
//	-log-level string  Log level: debug, info, warn, error (default $LOG_LEVEL or "info")
//
// Set LOG_FORMAT=json for JSON logs.
//
// Examples:
//
//	# Interactive console with tracing
//	mailbox-demo -trace demo.mblog
//
//	# Replay a scenario with queued delivery
//	mailbox-demo -script scenarios/lists.yaml -queue
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mailbox-go/mailbox-go/cmd/mailbox-demo/interactive"
	"github.com/mailbox-go/mailbox-go/pkg/log"
	"github.com/mailbox-go/mailbox-go/pkg/metrics"
)

// Config holds the demo configuration.
type Config struct {
	Script      string
	TraceFile   string
	Queue       bool
	MetricsAddr string
	LogLevel    string
}

var config Config

func init() {
	flag.StringVar(&config.Script, "script", "", "Run a YAML scenario instead of the console")
	flag.StringVar(&config.TraceFile, "trace", "", "Write mailbox trace events to this file (.mblog)")
	flag.BoolVar(&config.Queue, "queue", false, "Start with a serial delivery queue")
	flag.StringVar(&config.MetricsAddr, "metrics", "", "Serve Prometheus metrics on this address (e.g. "+metrics.DefaultAddr+")")
	flag.StringVar(&config.LogLevel, "log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn, error")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var console *interactive.Console
	var out io.Writer = os.Stdout
	logOut := io.Writer(os.Stderr)
	if config.Script == "" {
		var err error
		if console, err = interactive.NewConsole(); err != nil {
			return err
		}
		out = console.Stdout()
		logOut = console.Stderr()
	}

	logger := setupLogging(logOut, config.LogLevel)

	trace, closeTrace, err := setupTrace(config.TraceFile, logger)
	if err != nil {
		return err
	}
	defer closeTrace()

	registry := prometheus.NewRegistry()
	cfg := interactive.Config{
		Logger:      logger,
		TraceLogger: trace,
		Metrics:     metrics.NewPrometheusMetrics(registry),
	}

	if config.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, config.MetricsAddr, registry, logger); err != nil {
				logger.Error("metrics server", "error", err)
			}
		}()
	}

	session := interactive.NewSession(out, cfg)
	defer session.Close()

	if config.Queue {
		if _, err := session.Execute("queue on"); err != nil {
			return err
		}
	}

	if config.Script != "" {
		sc, err := interactive.LoadScenario(config.Script)
		if err != nil {
			return err
		}
		logger.Info("running scenario", "name", sc.Name, "steps", len(sc.Steps))
		if err := interactive.RunScenario(ctx, session, sc); err != nil {
			return fmt.Errorf("scenario %s: %w", sc.Name, err)
		}
		fmt.Fprintf(out, "Scenario %s passed\n", sc.Name)
		return nil
	}

	console.Attach(session)
	console.Run(ctx, cancel)
	return nil
}

// setupLogging builds the process logger from level and LOG_FORMAT.
func setupLogging(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if os.Getenv("LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupTrace returns the trace logger for the session. Trace events go to
// path when set, and to logger when debug logging is enabled.
func setupTrace(path string, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		closeFn = func() {
			if err := fl.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
				logger.Warn("close trace file", "error", err)
				return
			}
			logger.Info("trace written", "file", path, "events", fl.Written())
		}
	}

	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return log.NewMultiLogger(loggers...), closeFn, nil
	}
}
