package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Input     Input     `yaml:"input"`
	Session   Session   `yaml:"session"`
	Overrides Overrides `yaml:"overrides"`
	Signature Signature `yaml:"signature"`
	Output    Output    `yaml:"output"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Input struct {
	SpreadsheetDir string `yaml:"spreadsheet_dir"`
}

// Session carries the sitting metadata defaults. Every field can be
// overridden by a CLI flag on the build command.
type Session struct {
	Number     string `yaml:"number"`
	Type       string `yaml:"type"`       // ordinaria | extraordinaria
	Format     string `yaml:"format"`     // nao-presencial | presencial
	Competency string `yaml:"competency"` // pleno | 1c | 2c
	Opening    string `yaml:"opening_date"`
	Closing    string `yaml:"closing_date"`
	StartTime  string `yaml:"start_time"`
}

// Overrides clamp the computed session dates. They take precedence over
// every scheduling rule.
type Overrides struct {
	ForcedOpening string `yaml:"forced_opening"`
	ForcedClosing string `yaml:"forced_closing"`
}

type Signature struct {
	Name     string `yaml:"name"`
	Title    string `yaml:"title"`
	DateLine string `yaml:"date_line"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
	Title   string `yaml:"document_title"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for pautagen.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "pautagen")
}

// DataDir returns the XDG data directory for pautagen.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "pautagen")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/pautagen/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'pautagen init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Input: Input{
			SpreadsheetDir: "planilhas",
		},
		Session: Session{
			Type:       "ordinaria",
			Format:     "nao-presencial",
			Competency: "pleno",
			StartTime:  "9h30min.",
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
