// Package main is the entry point for the pewbard status daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/pewbar/internal/audio"
	"github.com/jmylchreest/pewbar/internal/bar"
	"github.com/jmylchreest/pewbar/internal/config"
	"github.com/jmylchreest/pewbar/internal/notifier"
	"github.com/jmylchreest/pewbar/internal/updates"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/pewbar/config.toml)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		println("pewbard version", version)
		os.Exit(0)
	}

	// Structured logging on stderr; stdout carries the bar protocol.
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting pewbard", "version", version)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := bar.NewEngine(os.Stdout, logger)

	var pewModule *notifier.Module
	if cfg.Pew.Enabled {
		pewModule, err = notifier.NewModule(notifier.DisplayConfig{
			Template: cfg.Pew.Template,
			Timeout:  cfg.PewTimeout(),
			Sound:    cfg.Pew.Sound,
		}, logger)
		if err != nil {
			logger.Error("failed to create pew module", "error", err)
			os.Exit(1)
		}
		pewModule.SetRefresh(engine.RefreshFunc(notifier.ModuleName))
		if cfg.Pew.Sound != "" {
			pewModule.SetPlayer(audio.NewPlayer(logger))
		}
		engine.Register(pewModule)

		// The bus source feeds the module; if the bus never comes up the
		// module simply stays in its empty state.
		source := notifier.NewSource(pewModule.Events(), logger)
		go source.Run(ctx)
		go pewModule.Run(ctx)
	}

	var updatesModule *updates.Module
	if cfg.Updates.Enabled {
		var refs []string
		if cfg.Updates.Template != "" {
			refs = updates.TemplateRefs(cfg.Updates.Template)
		}
		backends := updates.ActiveBackends(refs, updates.Available)
		logger.Info("update backends selected", "count", len(backends))

		agg := updates.NewAggregator(backends, logger)
		updatesModule, err = updates.NewModule(agg, updates.DisplayConfig{
			Template:   cfg.Updates.Template,
			Interval:   cfg.UpdatesInterval(),
			Thresholds: cfg.UpdatesThresholds(),
		}, logger)
		if err != nil {
			logger.Error("failed to create updates module", "error", err)
			os.Exit(1)
		}
		engine.Register(updatesModule)
	}

	// Hot-reload display settings on config change. The backend set is
	// fixed at startup and is not rebuilt.
	watchPath := *configPath
	if watchPath == "" {
		watchPath = config.ConfigPath()
	}
	watcher, err := config.NewWatcher(watchPath, func(newCfg *config.Config) {
		if pewModule != nil {
			err := pewModule.SetDisplay(notifier.DisplayConfig{
				Template: newCfg.Pew.Template,
				Timeout:  newCfg.PewTimeout(),
				Sound:    newCfg.Pew.Sound,
			})
			if err != nil {
				logger.Warn("failed to apply pew config", "error", err)
			}
		}
		if updatesModule != nil {
			err := updatesModule.SetDisplay(updates.DisplayConfig{
				Template:   newCfg.Updates.Template,
				Interval:   newCfg.UpdatesInterval(),
				Thresholds: newCfg.UpdatesThresholds(),
			})
			if err != nil {
				logger.Warn("failed to apply updates config", "error", err)
			}
		}
		logger.Info("config reloaded")
	}, logger)
	if err != nil {
		logger.Warn("failed to create config watcher", "error", err)
	} else if err := watcher.Start(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	logger.Info("pewbard ready")

	if err := engine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("engine stopped", "error", err)
		os.Exit(1)
	}

	if watcher != nil {
		_ = watcher.Stop()
	}
	logger.Info("pewbard stopped")
}
