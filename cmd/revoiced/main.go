package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"revoice/internal/config"
	"revoice/internal/daemon"
	"revoice/internal/logging"
	"revoice/internal/preflight"
	"revoice/internal/queue"
	"revoice/internal/transcriber"
	"revoice/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	results := preflight.RunAll(ctx, cfg)
	for _, result := range results {
		if result.Passed {
			logger.Info("preflight check passed",
				logging.String("check", result.Name),
				logging.String("detail", result.Detail),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", result.Name),
			logging.String("detail", result.Detail),
		)
	}
	if !preflight.AllPassed(results) {
		logger.Error("startup aborted; resolve the failed checks above and restart")
		os.Exit(1)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		os.Exit(1)
	}

	if reclaimed, err := store.ResetStuckProcessing(ctx); err != nil {
		logger.Warn("reset stuck items", logging.Error(err))
	} else if reclaimed > 0 {
		logger.Info("reset stuck items from previous run", logging.Int64("count", reclaimed))
	}

	workflowManager := workflow.NewManager(cfg, store, logger)
	workflowManager.ConfigureStages(workflow.StageSet{
		Transcriber: transcriber.New(cfg, store, logger),
	})

	d, err := daemon.New(cfg, store, logger, workflowManager)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		os.Exit(1)
	}
	defer d.Close()

	pidPath := filepath.Join(cfg.Paths.LogDir, "revoiced.pid")
	if err := writePIDFile(pidPath); err != nil {
		logger.Warn("write pid file", logging.Error(err))
	} else {
		defer os.Remove(pidPath)
	}

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("revoiced shutting down")
}

func writePIDFile(path string) error {
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
