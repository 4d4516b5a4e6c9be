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
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/AleutianAI/AleutianBundler/services/bundler/transform"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// sourceExtensions lists the file extensions picked up from directories.
var sourceExtensions = map[string]bool{
	".js":  true,
	".jsx": true,
	".mjs": true,
	".cjs": true,
}

// runTransform specializes every input file for the selected target.
func runTransform(cmd *cobra.Command, args []string) {
	platformList, err := resolvePlatforms()
	if err != nil {
		logger.Error("cannot resolve target platforms", "error", err)
		os.Exit(1)
	}

	transformer := transform.NewTransformer(
		transform.WithTargetPlatforms(platformList),
		transform.WithDevelopmentMode(devMode || cfg.Development),
		transform.WithPlatformModule(cfg.PlatformModule, cfg.PlatformSymbol),
	)
	logger.Info("transforming",
		"platforms", strings.Join(platformList, ","),
		"dev", devMode || cfg.Development,
	)

	ctx := context.Background()
	files, err := collectSources(args)
	if err != nil {
		logger.Error("cannot collect input files", "error", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		logger.Warn("no JavaScript sources found", "inputs", strings.Join(args, ","))
	}

	failures := 0
	for _, file := range files {
		if err := transformFile(ctx, transformer, file); err != nil {
			logger.Error("transform failed", "file", file, "error", err)
			failures++
		}
	}
	if failures > 0 && !watchMode {
		os.Exit(1)
	}

	if watchMode {
		if err := watchSources(ctx, transformer, args); err != nil {
			logger.Error("watch failed", "error", err)
			os.Exit(1)
		}
	}
}

// resolvePlatforms determines the platform priority list from flags.
//
// An explicit --platform list wins over --target; with neither, the
// "android" target from the configuration is used.
func resolvePlatforms() ([]string, error) {
	if len(platforms) > 0 {
		return platforms, nil
	}
	target := targetName
	if target == "" {
		target = "android"
	}
	return cfg.PlatformsFor(target)
}

// collectSources expands the input arguments into a flat file list.
//
// Directories are walked recursively; only recognized JavaScript
// extensions are included. Explicitly named files are always included.
func collectSources(inputs []string) ([]string, error) {
	var files []string
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}
		if !info.IsDir() {
			files = append(files, input)
			continue
		}
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "node_modules" || strings.HasPrefix(d.Name(), ".") && path != input {
					return filepath.SkipDir
				}
				return nil
			}
			if sourceExtensions[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", input, err)
		}
	}
	return files, nil
}

// transformFile runs the transformer over a single file and writes the
// result according to the --out flag.
func transformFile(ctx context.Context, transformer *transform.Transformer, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	result, err := transformer.Transform(ctx, content, path)
	if err != nil {
		return err
	}
	logger.Debug("transformed",
		"file", path,
		"replacements", result.Stats.Total(),
		"branches_discarded", result.Stats.BranchesDiscarded,
		"duration_ms", result.DurationMilli,
	)

	switch outDir {
	case "-":
		_, err = os.Stdout.Write(result.Output)
		return err
	case "":
		if result.Stats.Total() == 0 {
			return nil
		}
		return os.WriteFile(path, result.Output, 0o644)
	default:
		outPath := filepath.Join(outDir, filepath.Base(path))
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		return os.WriteFile(outPath, result.Output, 0o644)
	}
}

// watchSources re-transforms files as they change until interrupted.
func watchSources(ctx context.Context, transformer *transform.Transformer, inputs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return fmt.Errorf("stat %s: %w", input, err)
		}
		if info.IsDir() {
			err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() && d.Name() != "node_modules" {
					return watcher.Add(path)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("watch %s: %w", input, err)
			}
			continue
		}
		if err := watcher.Add(filepath.Dir(input)); err != nil {
			return fmt.Errorf("watch %s: %w", input, err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("watching for changes", "inputs", strings.Join(inputs, ","))

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !sourceExtensions[filepath.Ext(event.Name)] {
				continue
			}
			// In-place output would retrigger the watcher on our own write.
			if outDir == "" {
				logger.Warn("watch requires --out, skipping", "file", event.Name)
				continue
			}
			if err := transformFile(ctx, transformer, event.Name); err != nil {
				logger.Error("transform failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		case <-quit:
			logger.Info("shutting down watcher")
			return nil
		}
	}
}
