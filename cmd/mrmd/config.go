// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

//go:build linux

package main

import (
	"os"

	"gopkg.in/yaml.v3"

	"thornbr.dev/mrm/internal/errors"
)

// Config is mrmd's entire static configuration: which kernel interfaces
// face the Thread mesh and the backbone LAN, and where to serve Prometheus
// metrics. There is no persisted runtime state; everything else (listener
// registrations, MFC contents) lives only in the running Manager, per
// spec.md's explicit non-goal of a config layer for the core MRM itself.
type Config struct {
	ThreadInterface   string `yaml:"thread_interface"`
	BackboneInterface string `yaml:"backbone_interface"`
	MetricsAddr       string `yaml:"metrics_addr"`
	Backend           string `yaml:"backend"` // "kernel" (default) or "smcroute"
}

func defaultConfig() Config {
	return Config{
		ThreadInterface:   "wpan0",
		BackboneInterface: "eth0",
		MetricsAddr:       ":9540",
		Backend:           "kernel",
	}
}

// loadConfig reads and parses path, overlaying it onto defaultConfig().
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, errors.KindNotFound, "read config %q", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, errors.KindValidation, "parse config %q", path)
	}
	if cfg.ThreadInterface == "" || cfg.BackboneInterface == "" {
		return Config{}, errors.New(errors.KindValidation, "thread_interface and backbone_interface are required")
	}
	return cfg, nil
}
