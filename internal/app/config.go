package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PlanPath    string // hcl or yaml plan files
	ModulesPath string // hcl runner manifests

	LogFormat   string
	LogLevel    string
	HTTPPort    int
	WorkerCount int
}

// NewConfig validates the raw configuration.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PlanPath == "" {
		return nil, errors.New("PlanPath is a required configuration field and cannot be empty")
	}
	if cfg.WorkerCount < 0 {
		return nil, errors.New("WorkerCount cannot be negative")
	}
	return &cfg, nil
}
