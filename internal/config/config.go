package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "bankrec.yaml"

// Config represents the top-level bankrec.yaml configuration.
type Config struct {
	Company  CompanyConfig  `yaml:"company"`
	Operator OperatorConfig `yaml:"operator"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
	Import   ImportConfig   `yaml:"import"`
}

// CompanyConfig identifies the company this workspace keeps books for.
type CompanyConfig struct {
	ID   int64  `yaml:"id"`
	Name string `yaml:"name"`
	RUC  string `yaml:"ruc"`
}

// OperatorConfig names who is acting; recorded on uploads and reconciliations.
type OperatorConfig struct {
	Actor string `yaml:"actor"`
}

// DatabaseConfig locates the sqlite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig locates uploaded statement files.
type StorageConfig struct {
	UploadsDir string `yaml:"uploads_dir"`
}

// LogConfig controls structured logging and the operator action log.
type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"` // "json" or "console"
	ActionsFile string `yaml:"actions_file"`
}

// ImportConfig tunes statement processing.
type ImportConfig struct {
	SurfacedErrors int `yaml:"surfaced_errors"` // row errors quoted in a failure note
}

// Load reads a bankrec.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default("", "")
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new workspace.
func Default(companyName, ruc string) *Config {
	return &Config{
		Company: CompanyConfig{
			Name: companyName,
			RUC:  ruc,
		},
		Operator: OperatorConfig{
			Actor: "operator",
		},
		Database: DatabaseConfig{
			Path: "bankrec.db",
		},
		Storage: StorageConfig{
			UploadsDir: "uploads",
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "json",
			ActionsFile: filepath.Join("logs", "actions.csv"),
		},
		Import: ImportConfig{
			SurfacedErrors: 5,
		},
	}
}

// ResolvePaths makes relative file locations absolute against dir, the
// directory holding the config file.
func (c *Config) ResolvePaths(dir string) {
	for _, p := range []*string{&c.Database.Path, &c.Storage.UploadsDir, &c.Log.ActionsFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
