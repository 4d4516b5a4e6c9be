// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the bundler configuration file.
//
// The configuration maps deployment targets to their ordered platform
// priority lists and carries pipeline-wide defaults:
//
//	platform_module: react-native
//	development: true
//	targets:
//	  android: [android, native]
//	  ios: [ios, native]
//	  web: [web]
//
// The first entry of a target's list is the platform substituted for
// Platform.OS; list positions rank Platform.select branches.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for configuration failures.
var (
	// ErrUnknownTarget indicates that a requested deployment target is
	// not defined in the configuration.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrInvalidConfig indicates that the configuration file is
	// structurally invalid.
	ErrInvalidConfig = errors.New("invalid config")
)

// Config is the bundler configuration.
type Config struct {
	// PlatformModule is the module recognized as the platform
	// framework. Default: react-native.
	PlatformModule string `yaml:"platform_module"`

	// PlatformSymbol is the exported name carrying the platform API.
	// Default: Platform.
	PlatformSymbol string `yaml:"platform_symbol"`

	// Development is the default __DEV__ substitution value; the CLI
	// flag overrides it.
	Development bool `yaml:"development"`

	// Targets maps a deployment target name to its ordered platform
	// priority list, most specific first.
	Targets map[string][]string `yaml:"targets"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		PlatformModule: "react-native",
		PlatformSymbol: "Platform",
		Development:    false,
		Targets: map[string][]string{
			"android": {"android", "native"},
			"ios":     {"ios", "native"},
			"web":     {"web"},
		},
	}
}

// Load reads and validates a configuration file.
//
// Missing optional fields fall back to the defaults from Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %v: %w", path, err, ErrInvalidConfig)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if c.PlatformModule == "" {
		return fmt.Errorf("platform_module must not be empty: %w", ErrInvalidConfig)
	}
	if c.PlatformSymbol == "" {
		return fmt.Errorf("platform_symbol must not be empty: %w", ErrInvalidConfig)
	}
	for target, platforms := range c.Targets {
		if len(platforms) == 0 {
			return fmt.Errorf("target %q has an empty platform list: %w", target, ErrInvalidConfig)
		}
		for _, p := range platforms {
			if p == "" {
				return fmt.Errorf("target %q contains an empty platform name: %w", target, ErrInvalidConfig)
			}
		}
	}
	return nil
}

// PlatformsFor returns the ordered platform priority list for a
// deployment target.
func (c *Config) PlatformsFor(target string) ([]string, error) {
	platforms, ok := c.Targets[target]
	if !ok {
		return nil, fmt.Errorf("target %q: %w", target, ErrUnknownTarget)
	}
	return platforms, nil
}
