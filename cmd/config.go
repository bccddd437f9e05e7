package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds the optional TOML settings file. Flags override any value
// set here.
type Config struct {
	Collection string `toml:"collection"`
	Policy     string `toml:"policy"`
	OutputDir  string `toml:"output_dir"`
	Endpoint   string `toml:"endpoint"`
	Token      string `toml:"token"`
	Download   bool   `toml:"download"`
}

// loadConfig reads a TOML config file. A missing path returns an empty
// config; a named file that cannot be read or parsed is an error.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
