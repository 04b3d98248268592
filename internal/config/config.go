// Package config provides configuration management for the caskdb
// storage engine. It loads settings from a YAML file and environment
// variables, with thread-safe singleton access for the CLI entry point,
// while still letting library callers build a Config by hand.
package config

import (
	"log/slog"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// IndexType selects the KeyDirectory implementation an Engine uses.
type IndexType string

const (
	// IndexBTree is the ordered in-memory KeyDirectory backed by
	// google/btree. It is the only implemented backend.
	IndexBTree IndexType = "btree"
	// IndexSkipList is accepted by configuration but not implemented;
	// internal/index.NewIndexer rejects it with ErrIndexTypeNotSupported.
	IndexSkipList IndexType = "skiplist"
)

// Config holds all engine configuration values.
type Config struct {
	DirPath         string    `yaml:"dir_path"`
	DataFileSize    int64     `yaml:"data_file_size"`
	SyncWrites      bool      `yaml:"sync_writes"`
	IndexType       IndexType `yaml:"index_type"`
	MaxBatchNum     uint      `yaml:"max_batch_num"`
	BatchSyncWrites bool      `yaml:"batch_sync_writes"`
}

// DefaultConfig returns sane defaults for opening an engine directly
// from library code, without going through LoadConfig.
func DefaultConfig() *Config {
	return &Config{
		DirPath:         "data",
		DataFileSize:    256 * 1024 * 1024,
		SyncWrites:      false,
		IndexType:       IndexBTree,
		MaxBatchNum:     10000,
		BatchSyncWrites: false,
	}
}

var (
	appConfig *Config
	once      sync.Once
	initErr   error
)

// LoadConfig reads configuration values from config.yml and optionally
// from a .env file. It uses a sync.Once so configuration is loaded only
// once, even under concurrent calls. Environment variables in the YAML
// file are expanded using os.ExpandEnv.
func LoadConfig() (*Config, error) {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			slog.Debug("config: no .env file found or error loading it", "error", err)
		} else {
			slog.Debug("config: .env file loaded successfully")
		}

		file, err := os.ReadFile("internal/config/config.yml")
		if err != nil {
			initErr = err
			return
		}

		cfg := *DefaultConfig()
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(file))), &cfg); err != nil {
			initErr = err
			return
		}
		if cfg.DirPath == "" {
			cfg.DirPath = DefaultConfig().DirPath
		}
		appConfig = &cfg
	})
	if initErr != nil {
		return nil, initErr
	}
	return appConfig, initErr
}

// GetConfig returns the singleton configuration instance. Panics if
// configuration has not been loaded yet; only call after a successful
// LoadConfig.
func GetConfig() *Config {
	if appConfig == nil {
		panic("config not loaded - call LoadConfig() first")
	}
	return appConfig
}
