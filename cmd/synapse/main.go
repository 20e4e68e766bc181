// Command synapse runs the in-process dataflow engine: it loads a graph
// configuration document, wires blocks/ports/routes/dispatchers per the
// engine specification, and runs until signaled to stop.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/xavier-caroff/synapse/manager"
	"github.com/xavier-caroff/synapse/metrics"
	"github.com/xavier-caroff/synapse/registry"
	"github.com/xavier-caroff/synapse/shutdownsignal"
	"github.com/xavier-caroff/synapse/stockblocks"
)

const (
	version   = "0.1.0"
	buildTime = "dev"
)

const (
	exitSuccess           = 0
	exitUnhandledPanic    = 100
	exitInvalidCLI        = 101
	exitConfigReadFailure = 102
	exitManagerInitFailed = 103
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) (code int) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			fmt.Fprintf(os.Stderr, "PANIC: %v\n%s\n", r, buf[:n])
			code = exitUnhandledPanic
		}
	}()

	cfg, err := parseArgs(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printHelp()
		return exitInvalidCLI
	}

	if cfg.ShowHelp {
		printHelp()
		return exitSuccess
	}
	if cfg.ShowVersion {
		printVersion()
		return exitSuccess
	}

	logger := setupLogger(cfg.CLIFormat)
	slog.SetDefault(logger)

	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		logger.Error("failed to read configuration", "path", cfg.ConfigPath, "error", err)
		return exitConfigReadFailure
	}

	graphCfg, err := manager.ParseConfig(raw)
	if err != nil {
		logger.Error("failed to parse configuration", "path", cfg.ConfigPath, "error", err)
		return exitConfigReadFailure
	}

	reg := registry.New(logger)
	if err := stockblocks.Register(reg); err != nil {
		logger.Error("failed to register stock blocks", "error", err)
		return exitManagerInitFailed
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	mgr := manager.New(reg, logger, m)

	if err := mgr.LoadModules(graphCfg.AdditionalPackageFolders); err != nil {
		logger.Error("failed to load modules", "error", err)
		return exitManagerInitFailed
	}

	if err := mgr.Initialize(graphCfg); err != nil {
		logger.Error("failed to initialize graph", "error", err)
		return exitManagerInitFailed
	}

	reportStartup(cfg.CLIFormat, graphCfg)

	stop := shutdownsignal.Watch(context.Background(), mgr)
	defer stop()

	if err := mgr.Run(context.Background()); err != nil {
		logger.Error("run failed", "error", err)
		return exitUnhandledPanic
	}

	reportShutdown(cfg.CLIFormat)
	return exitSuccess
}

func reportStartup(format string, cfg manager.Config) {
	if format == "json" {
		payload, _ := json.Marshal(map[string]any{
			"event":  "started",
			"blocks": len(cfg.Blocks),
			"routes": len(cfg.Routes),
		})
		fmt.Println(string(payload))
		return
	}
	fmt.Printf("synapse started: %d blocks, %d routes\n", len(cfg.Blocks), len(cfg.Routes))
}

func reportShutdown(format string) {
	if format == "json" {
		payload, _ := json.Marshal(map[string]any{"event": "stopped"})
		fmt.Println(string(payload))
		return
	}
	fmt.Println("synapse stopped")
}
