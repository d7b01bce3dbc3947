package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the board needs to start.
type Config struct {
	Addr                string `yaml:"addr" validate:"required"`
	DBPath              string `yaml:"db_path" validate:"required"`
	UploadDir           string `yaml:"upload_dir" validate:"required"`
	BackupDir           string `yaml:"backup_dir" validate:"required"`
	PageSize            int    `yaml:"page_size" validate:"min=1,max=500"`
	PreviewChars        int    `yaml:"preview_chars" validate:"min=1"`
	MaxUploadBytes      int64  `yaml:"max_upload_bytes" validate:"min=1"`
	RejectOrphanReplies bool   `yaml:"reject_orphan_replies"`
	SyncWrites          bool   `yaml:"sync_writes"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Addr:           ":8081",
		DBPath:         "data/badger",
		UploadDir:      "static",
		BackupDir:      "data/backups",
		PageSize:       30,
		PreviewChars:   2700,
		MaxUploadBytes: 20 << 20,
		SyncWrites:     true,
	}
}

// Load builds the configuration from defaults, the optional YAML file at
// path, a .env file in the working directory and BOARD_* environment
// variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: could not read .env: %v", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("BOARD_ADDR", c.Addr)
	c.DBPath = getEnv("BOARD_DB_PATH", c.DBPath)
	c.UploadDir = getEnv("BOARD_UPLOAD_DIR", c.UploadDir)
	c.BackupDir = getEnv("BOARD_BACKUP_DIR", c.BackupDir)

	var err error
	if c.PageSize, err = getEnvInt("BOARD_PAGE_SIZE", c.PageSize); err != nil {
		return err
	}
	if c.PreviewChars, err = getEnvInt("BOARD_PREVIEW_CHARS", c.PreviewChars); err != nil {
		return err
	}
	maxUpload, err := getEnvInt("BOARD_MAX_UPLOAD_BYTES", int(c.MaxUploadBytes))
	if err != nil {
		return err
	}
	c.MaxUploadBytes = int64(maxUpload)
	if c.RejectOrphanReplies, err = getEnvBool("BOARD_REJECT_ORPHAN_REPLIES", c.RejectOrphanReplies); err != nil {
		return err
	}
	if c.SyncWrites, err = getEnvBool("BOARD_SYNC_WRITES", c.SyncWrites); err != nil {
		return err
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
