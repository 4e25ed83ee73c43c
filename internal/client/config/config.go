package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the authctl CLI.
type Config struct {
	ServerURL string        `env:"SERVER_URL"`
	Timeout   time.Duration `env:"TIMEOUT"`
	TokenFile string        `env:"TOKEN_FILE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.Timeout = 10 * time.Second
	c.TokenFile = defaultTokenFile()
}

// userConfigDir is a test seam for os.UserConfigDir.
var userConfigDir = os.UserConfigDir

func defaultTokenFile() string {
	dir, err := userConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "authctl", "token")
}

// LoadConfig builds a Config from defaults, the optional JSON file at
// jsonPath and the environment.
func LoadConfig(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := cfg.LoadJSON(jsonPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
