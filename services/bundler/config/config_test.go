// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bundler.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "react-native", cfg.PlatformModule)
	assert.Equal(t, "Platform", cfg.PlatformSymbol)
	assert.False(t, cfg.Development)

	android, err := cfg.PlatformsFor("android")
	require.NoError(t, err)
	assert.Equal(t, []string{"android", "native"}, android)

	ios, err := cfg.PlatformsFor("ios")
	require.NoError(t, err)
	assert.Equal(t, []string{"ios", "native"}, ios)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
platform_module: react-native-web
development: true
targets:
  android: [android, native]
  electron: [electron, web]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "react-native-web", cfg.PlatformModule)
	// Unset fields keep their defaults.
	assert.Equal(t, "Platform", cfg.PlatformSymbol)
	assert.True(t, cfg.Development)

	electron, err := cfg.PlatformsFor("electron")
	require.NoError(t, err)
	assert.Equal(t, []string{"electron", "web"}, electron)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "targets: [not: a: map")

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default is valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty platform module",
			mutate:  func(c *Config) { c.PlatformModule = "" },
			wantErr: true,
		},
		{
			name:    "empty platform symbol",
			mutate:  func(c *Config) { c.PlatformSymbol = "" },
			wantErr: true,
		},
		{
			name:    "empty platform list",
			mutate:  func(c *Config) { c.Targets["tv"] = nil },
			wantErr: true,
		},
		{
			name:    "empty platform name",
			mutate:  func(c *Config) { c.Targets["tv"] = []string{""} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPlatformsFor_UnknownTarget(t *testing.T) {
	cfg := Default()
	_, err := cfg.PlatformsFor("playstation")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTarget)
}
