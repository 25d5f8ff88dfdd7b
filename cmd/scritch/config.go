package main

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// playConfig is the playground's own configuration, loaded from a TOML
// file. It only concerns the frontend; the execution core has its own
// Config.
type playConfig struct {
	FPS             int      `toml:"fps"`
	Debug           bool     `toml:"debug"`
	DebugCategories []string `toml:"debug_categories"`
	Columns         int      `toml:"columns"`
	Rows            int      `toml:"rows"`
}

func defaultPlayConfig() *playConfig {
	return &playConfig{
		FPS:     30,
		Columns: 80,
		Rows:    24,
	}
}

// loadPlayConfig reads the TOML config file, falling back to defaults
// when the file does not exist
func loadPlayConfig(path string) (*playConfig, error) {
	cfg := defaultPlayConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.Columns < 20 {
		cfg.Columns = 80
	}
	if cfg.Rows < 10 {
		cfg.Rows = 24
	}
	return cfg, nil
}
