// Package main provides the entry point for the caskdb storage engine.
// It initializes the logger, loads configuration, opens the engine,
// and starts the interactive command-line shell.
package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/jassi-singh/caskdb/internal/cli"
	"github.com/jassi-singh/caskdb/internal/config"
	"github.com/jassi-singh/caskdb/internal/engine"
)

func main() {
	slogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(slogHandler))

	slog.Info("main: loading configuration")
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("main: failed to load configuration", "error", err)
		log.Fatalf("failed to load config: %v", err)
	}
	slog.Info("main: configuration loaded",
		"dir_path", cfg.DirPath,
		"data_file_size", cfg.DataFileSize,
		"index_type", cfg.IndexType,
		"max_batch_num", cfg.MaxBatchNum,
	)

	e, err := engine.Open(cfg)
	if err != nil {
		slog.Error("main: failed to open engine", "error", err)
		log.Fatalf("failed to open engine: %v", err)
	}
	defer func() {
		if err := e.Close(); err != nil {
			slog.Error("main: error closing engine", "error", err)
		}
	}()

	slog.Info("main: caskdb started")

	handler := cli.NewHandler(e, cfg)
	if err := handler.Run(); err != nil {
		slog.Error("main: cli handler error", "error", err)
		log.Fatalf("cli error: %v", err)
	}
}
