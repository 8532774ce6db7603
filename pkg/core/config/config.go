// Package config loads application settings from a config file with
// environment overrides layered on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	hjson "github.com/hjson/hjson-go/v4"
	"gopkg.in/yaml.v2"
)

// AppConfig is the application's settings surface. File values come from
// config.yaml or config.hjson; the environment overrides field by field.
type AppConfig struct {
	// SpreadsheetID names the Google Sheets document, as a bare ID or any
	// of its URL shapes.
	SpreadsheetID string `yaml:"spreadsheet_id" json:"spreadsheet_id"`
	// WorkbookPath points at a local .xlsx used when no spreadsheet is
	// configured.
	WorkbookPath string `yaml:"workbook_path" json:"workbook_path"`
	// DefaultModel is the model used when a prompt config names none.
	DefaultModel string `yaml:"default_model" json:"default_model"`
	// MaxConcurrent caps in-flight model calls per batch.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`
	// DatabaseURL enables the run-history repository when set.
	DatabaseURL string `yaml:"database_url" json:"database_url"`
	// PromptLibrary points at the reusable prompt template YAML file.
	PromptLibrary string `yaml:"prompt_library" json:"prompt_library"`
	// ListenAddr is the HTTP API bind address.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}

func defaults() AppConfig {
	return AppConfig{
		DefaultModel: "gemini-2.5-flash",
		ListenAddr:   ":8080",
	}
}

// Load reads the named config file (YAML or HJSON by extension), then applies
// environment overrides. An empty path tries config.yaml then config.hjson in
// the working directory; a missing file is not an error, the defaults plus
// environment stand alone.
func Load(path string) (AppConfig, error) {
	cfg := defaults()

	paths := []string{path}
	if path == "" {
		paths = []string{"config.yaml", "config.hjson"}
	}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if path != "" {
				return cfg, fmt.Errorf("read config %s: %w", p, err)
			}
			continue
		}
		if err := unmarshalByExt(p, data, &cfg); err != nil {
			return cfg, err
		}
		break
	}

	applyEnv(&cfg)
	return cfg, nil
}

func unmarshalByExt(path string, data []byte, cfg *AppConfig) error {
	if strings.HasSuffix(path, ".hjson") || strings.HasSuffix(path, ".json") {
		if err := hjson.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("WORKBOOK_PATH"); v != "" {
		cfg.WorkbookPath = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		cfg.DefaultModel = v
	}
	if v := os.Getenv("MAX_CONCURRENT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConcurrent = n
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
}
