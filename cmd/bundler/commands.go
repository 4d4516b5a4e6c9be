// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string // Path to bundler.yaml (optional)
	verbose    bool   // Enable debug logging
	quiet      bool   // Suppress stderr logging
	logJSON    bool   // Emit stderr logs as JSON

	targetName string   // Named target from config (android/ios/web/...)
	platforms  []string // Explicit platform priority list, overrides --target
	devMode    bool     // Value substituted for __DEV__
	outDir     string   // Output directory; "-" writes to stdout
	watchMode  bool     // Re-run on file changes

	rootCmd = &cobra.Command{
		Use:   "bundler",
		Short: "A cli to specialize JavaScript bundles for a target platform",
		Long: `Bundler rewrites JavaScript sources at build time, resolving
				Platform.OS, Platform.select({...}), and __DEV__ to
				compile-time constants for a chosen target platform.`,
	}

	transformCmd = &cobra.Command{
		Use:   "transform [file or directory path...]",
		Short: "Rewrite sources for the selected target platform",
		Long: `Parses each JavaScript source, replaces platform checks with
the target's compile-time values, and writes the specialized output.

Examples:
  bundler transform --target android src/
  bundler transform --platform ios --platform native --dev app.js
  bundler transform --target web --out build/ src/
  bundler transform --target android --watch src/`,
		Args: cobra.MinimumNArgs(1),
		Run:  runTransform, // Defined in cmd_transform.go
	}

	targetsCmd = &cobra.Command{
		Use:   "targets",
		Short: "List the deployment targets defined in the configuration",
		Run:   runTargets,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to bundler.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress log output")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")

	transformCmd.Flags().StringVarP(&targetName, "target", "t", "", "Named target from the configuration")
	transformCmd.Flags().StringArrayVarP(&platforms, "platform", "p", nil, "Platform priority list, most specific first (overrides --target)")
	transformCmd.Flags().BoolVar(&devMode, "dev", false, "Substitute true for __DEV__")
	transformCmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory ('-' for stdout, default rewrites in place)")
	transformCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Watch inputs and re-transform on change")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(targetsCmd)
}

// runTargets prints the configured targets and their platform lists.
func runTargets(cmd *cobra.Command, args []string) {
	names := make([]string, 0, len(cfg.Targets))
	for name := range cfg.Targets {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%-12s %s\n", name, strings.Join(cfg.Targets[name], ", "))
	}
}
