package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/me/schedq/internal/config"
	"github.com/me/schedq/internal/engine"
	"github.com/me/schedq/internal/logging"
	"github.com/me/schedq/internal/server"
	"github.com/me/schedq/internal/trace"
)

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	logFormat := flag.String("log-format", "", "Log format: text, json (overrides config)")
	quantum := flag.Float64("quantum", 0, "Time quantum in seconds (overrides config)")
	traceDB := flag.String("trace-db", "", "SQLite path for the execution trace (overrides config)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if *quantum > 0 {
		cfg.TimeQuantum = *quantum
	}
	if *traceDB != "" {
		cfg.TraceDB = *traceDB
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	engOpts := []engine.Option{}

	// Optional execution-trace recorder.
	var recorder *trace.Recorder
	if cfg.TraceDB != "" {
		recorder, err = trace.NewRecorder(cfg.TraceDB, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open trace db: %v\n", err)
			os.Exit(1)
		}
		defer recorder.Close()
		engOpts = append(engOpts, engine.WithTrace(recorder.Record))
		logger.Info("trace recorder ready", "path", cfg.TraceDB)
	}

	quantumDur := time.Duration(cfg.TimeQuantum * float64(time.Second))
	eng := engine.New(engine.Config{
		Quantum:     quantumDur,
		StopTimeout: quantumDur + time.Second,
	}, logger, engOpts...)

	srv := server.New(cfg, eng, logger)

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Handler(),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng.Start()

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "quantum", quantumDur)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	// Stop the engine before the HTTP server; a missed join is a warning,
	// not a crash.
	if err := eng.Stop(); err != nil {
		logger.Warn("engine stop", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
