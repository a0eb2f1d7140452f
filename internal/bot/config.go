package bot

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "depotbot/core/config"
	coredatabase "depotbot/core/database"
)

// ReportsConfig controls where exported report artifacts are written.
type ReportsConfig struct {
	Dir string `yaml:"dir" envconfig:"REPORTS_DIR"`
}

// AdminConfig describes the inspector account seeded on first run. The
// Telegram id comes from the core telegram.admin_id setting.
type AdminConfig struct {
	FullName string `yaml:"full_name" envconfig:"ADMIN_FULL_NAME"`
	Position string `yaml:"position" envconfig:"ADMIN_POSITION"`
	Railway  string `yaml:"railway" envconfig:"ADMIN_RAILWAY"`
	Branch   string `yaml:"branch" envconfig:"ADMIN_BRANCH"`
}

// Config aggregates core settings with the bot's own sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Reports  ReportsConfig       `yaml:"reports"`
	Admin    AdminConfig         `yaml:"admin"`
}

// CoreConfig exposes the embedded core configuration for the shared runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Core
}

// LoadConfig reads configuration from a YAML file and environment variables.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Reports.Dir == "" {
		cfg.Reports.Dir = "reports"
	}
	return &cfg, nil
}
