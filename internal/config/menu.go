package config

import (
	"encoding/json"
	"fmt"
	"os"

	"ramen-kiosk/internal/model"
)

// LoadMenuConfig reads and validates the static menu document. It is called
// exactly once per server process; the returned value is immutable and shared
// by reference across all sessions.
func LoadMenuConfig(path string) (*model.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read menu config %s: %w", path, err)
	}

	var cfg model.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse menu config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("menu config %s: %w", path, err)
	}

	return &cfg, nil
}
