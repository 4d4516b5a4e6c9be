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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for the specialization pass.
var (
	tracer = otel.Tracer("aleutian.bundler.transform")
	meter  = otel.Meter("aleutian.bundler.transform")
)

// Metrics for transform operations.
var (
	transformLatency  metric.Float64Histogram
	transformTotal    metric.Int64Counter
	replacementsTotal metric.Int64Counter
	branchesDiscarded metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		transformLatency, err = meter.Float64Histogram(
			"bundler_transform_duration_seconds",
			metric.WithDescription("Duration of platform-specialization runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		transformTotal, err = meter.Int64Counter(
			"bundler_transform_total",
			metric.WithDescription("Total number of platform-specialization runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		replacementsTotal, err = meter.Int64Counter(
			"bundler_replacements_total",
			metric.WithDescription("Total platform-conditional replacements by rule"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		branchesDiscarded, err = meter.Int64Counter(
			"bundler_select_branches_discarded_total",
			metric.WithDescription("Total Platform.select branches dropped by specialization"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordTransformMetrics records metrics for one transform run.
func recordTransformMetrics(ctx context.Context, duration time.Duration, stats Stats, success bool) {
	if err := initMetrics(); err != nil {
		return // Silently skip if metrics init failed
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))
	transformLatency.Record(ctx, duration.Seconds(), attrs)
	transformTotal.Add(ctx, 1, attrs)

	if !success {
		return
	}
	if stats.OSReplacements > 0 {
		replacementsTotal.Add(ctx, int64(stats.OSReplacements),
			metric.WithAttributes(attribute.String("rule", "os")))
	}
	if stats.SelectReplacements > 0 {
		replacementsTotal.Add(ctx, int64(stats.SelectReplacements),
			metric.WithAttributes(attribute.String("rule", "select")))
	}
	if stats.DevReplacements > 0 {
		replacementsTotal.Add(ctx, int64(stats.DevReplacements),
			metric.WithAttributes(attribute.String("rule", "dev")))
	}
	if stats.BranchesDiscarded > 0 {
		branchesDiscarded.Add(ctx, int64(stats.BranchesDiscarded))
	}
}

// startTransformSpan creates a span for one transform run.
func startTransformSpan(ctx context.Context, filePath string, targetPlatform string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Transformer.Transform",
		trace.WithAttributes(
			attribute.String("bundler.file", filePath),
			attribute.String("bundler.target_platform", targetPlatform),
		),
	)
}

// setTransformSpanResult sets the result attributes on a transform span.
func setTransformSpanResult(span trace.Span, stats Stats) {
	span.SetAttributes(
		attribute.Int("bundler.replacements", stats.Total()),
		attribute.Int("bundler.branches_discarded", stats.BranchesDiscarded),
	)
}
