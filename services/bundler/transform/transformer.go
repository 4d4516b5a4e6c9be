// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianBundler/services/bundler/ast"
)

// TransformerOptions configures Transformer behavior.
type TransformerOptions struct {
	// TargetPlatforms is the ordered platform priority list, most
	// specific first.
	// Default: ["android", "native"]
	TargetPlatforms []string

	// DevelopmentMode is substituted for free __DEV__ identifiers.
	// Default: false
	DevelopmentMode bool

	// PlatformModule is the module recognized as the platform
	// framework.
	// Default: react-native
	PlatformModule string

	// PlatformSymbol is the exported name carrying the platform API.
	// Default: Platform
	PlatformSymbol string

	// MaxFileSize bounds the size of files accepted by the parser.
	// Default: 10MB
	MaxFileSize int
}

// DefaultTransformerOptions returns the default options.
func DefaultTransformerOptions() TransformerOptions {
	return TransformerOptions{
		TargetPlatforms: []string{"android", "native"},
		DevelopmentMode: false,
		PlatformModule:  DefaultPlatformModule,
		PlatformSymbol:  DefaultPlatformSymbol,
		MaxFileSize:     10 * 1024 * 1024, // 10MB
	}
}

// TransformerOption is a functional option for configuring Transformer.
type TransformerOption func(*TransformerOptions)

// WithTargetPlatforms sets the ordered platform priority list.
func WithTargetPlatforms(platforms []string) TransformerOption {
	return func(o *TransformerOptions) {
		o.TargetPlatforms = platforms
	}
}

// WithDevelopmentMode sets the __DEV__ substitution value.
func WithDevelopmentMode(dev bool) TransformerOption {
	return func(o *TransformerOptions) {
		o.DevelopmentMode = dev
	}
}

// WithPlatformModule sets the platform framework module and symbol.
func WithPlatformModule(module, symbol string) TransformerOption {
	return func(o *TransformerOptions) {
		o.PlatformModule = module
		o.PlatformSymbol = symbol
	}
}

// WithMaxFileSize sets the maximum accepted file size.
func WithMaxFileSize(size int) TransformerOption {
	return func(o *TransformerOptions) {
		o.MaxFileSize = size
	}
}

// TransformResult holds the output of one per-file transform.
type TransformResult struct {
	// FilePath is the path supplied to Transform.
	FilePath string

	// Output is the rewritten source. Equal to the input bytes when
	// nothing was specialized.
	Output []byte

	// Stats summarizes the replacements performed.
	Stats Stats

	// DurationMilli is the wall time of the transform as int64
	// milliseconds, per project conventions.
	DurationMilli int64
}

// Transformer runs the full per-file specialization pipeline:
// parse, collect bindings, specialize, apply edits.
//
// Description:
//
//	Transformer bundles a JavaScriptParser and a PlatformSpecializer
//	behind one call. Each Transform invocation is self-contained;
//	independent invocations may run in parallel from an outer
//	orchestrator.
//
// Example:
//
//	tr := transform.NewTransformer(
//	    transform.WithTargetPlatforms([]string{"ios", "native"}),
//	    transform.WithDevelopmentMode(true),
//	)
//	result, err := tr.Transform(ctx, content, "app.js")
//	if err != nil {
//	    return fmt.Errorf("transform: %w", err)
//	}
//	os.WriteFile(outPath, result.Output, 0o644)
//
// Thread Safety:
//
//	Transformer is immutable after construction and safe for
//	concurrent use.
type Transformer struct {
	options TransformerOptions
	parser  *ast.JavaScriptParser
}

// NewTransformer creates a Transformer with the given options.
func NewTransformer(opts ...TransformerOption) *Transformer {
	options := DefaultTransformerOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Transformer{
		options: options,
		parser:  ast.NewJavaScriptParser(ast.WithJSMaxFileSize(options.MaxFileSize)),
	}
}

// Options returns a copy of the transformer's effective options.
func (t *Transformer) Options() TransformerOptions {
	return t.options
}

// Transform specializes one JavaScript file.
//
// Inputs:
//
//	ctx      - Context for cancellation of the parse step.
//	content  - Raw JavaScript source bytes.
//	filePath - Path of the file, for logging and metrics.
//
// Outputs:
//
//	*TransformResult - The rewritten source and run statistics.
//	error            - Non-nil only for parse-boundary failures
//	                   (invalid content, too large, canceled). The
//	                   specialization pass itself cannot fail.
func (t *Transformer) Transform(ctx context.Context, content []byte, filePath string) (*TransformResult, error) {
	start := time.Now()

	target := ""
	if len(t.options.TargetPlatforms) > 0 {
		target = t.options.TargetPlatforms[0]
	}
	ctx, span := startTransformSpan(ctx, filePath, target)
	defer span.End()

	parsed, err := t.parser.Parse(ctx, content, filePath)
	if err != nil {
		recordTransformMetrics(ctx, time.Since(start), Stats{}, false)
		return nil, fmt.Errorf("transform %s: %w", filePath, err)
	}
	defer parsed.Close()

	bindings := ast.CollectBindings(parsed.Root(), content)

	spec := NewPlatformSpecializer(SpecializerConfig{
		TargetPlatforms: t.options.TargetPlatforms,
		Resolver:        bindings,
		Declarations:    bindings,
		DevelopmentMode: t.options.DevelopmentMode,
		PlatformModule:  t.options.PlatformModule,
		PlatformSymbol:  t.options.PlatformSymbol,
	})
	edits, stats := spec.Specialize(parsed.Root(), content)

	output, err := ApplyEdits(content, edits)
	if err != nil {
		// Cannot happen for edits produced by one run; fail loudly if
		// it ever does rather than emit corrupted output.
		recordTransformMetrics(ctx, time.Since(start), Stats{}, false)
		return nil, fmt.Errorf("transform %s: apply edits: %w", filePath, err)
	}

	duration := time.Since(start)
	setTransformSpanResult(span, stats)
	recordTransformMetrics(ctx, duration, stats, true)

	slog.Debug("specialized file",
		"file", filePath,
		"target", target,
		"replacements", stats.Total(),
		"branches_discarded", stats.BranchesDiscarded,
		"duration_ms", duration.Milliseconds(),
	)

	return &TransformResult{
		FilePath:      filePath,
		Output:        output,
		Stats:         stats,
		DurationMilli: duration.Milliseconds(),
	}, nil
}
