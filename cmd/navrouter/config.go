package main

import (
	"fmt"

	"github.com/vyrodovalexey/navrouter/internal/config"
)

// loadConfig resolves, loads and validates the configuration file.
func loadConfig(path string) (string, *config.Config, error) {
	resolved, err := config.ResolveConfigPath(path)
	if err != nil {
		return "", nil, err
	}

	cfg, err := config.LoadConfig(resolved)
	if err != nil {
		return "", nil, err
	}

	if err := config.Validate(cfg); err != nil {
		return "", nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return resolved, cfg, nil
}
