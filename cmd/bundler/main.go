// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command bundler specializes JavaScript sources for a target platform.
//
// The bundler parses each input file, replaces Platform.OS with the
// target's platform string, collapses Platform.select({...}) calls to
// the winning branch, and substitutes the __DEV__ flag, then emits the
// rewritten source.
//
// Usage:
//
//	bundler transform --target android src/
//	bundler transform --platform ios --platform native --dev app.js
//	bundler transform --target web --out build/ --watch src/
//	bundler targets
package main

import (
	"os"

	"github.com/AleutianAI/AleutianBundler/pkg/logging"
	"github.com/AleutianAI/AleutianBundler/services/bundler/config"
	"github.com/spf13/cobra"
)

var (
	cfg    *config.Config
	logger *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if verbose {
			level = logging.LevelDebug
		}
		logger = logging.New(logging.Config{
			Level:   level,
			Service: "bundler",
			JSON:    logJSON,
			Quiet:   quiet,
		})

		if configPath != "" {
			loaded, err := config.Load(configPath)
			if err != nil {
				logger.Error("failed to load config", "path", configPath, "error", err)
				os.Exit(1)
			}
			cfg = loaded
			logger.Debug("configuration loaded", "path", configPath)
			return
		}

		// No explicit config: use bundler.yaml if present, defaults otherwise.
		if _, err := os.Stat("bundler.yaml"); err == nil {
			loaded, err := config.Load("bundler.yaml")
			if err != nil {
				logger.Error("failed to load config", "path", "bundler.yaml", "error", err)
				os.Exit(1)
			}
			cfg = loaded
			logger.Debug("configuration loaded", "path", "bundler.yaml")
			return
		}
		cfg = config.Default()
	}
}
