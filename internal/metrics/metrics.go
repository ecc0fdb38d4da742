// SPDX-License-Identifier: MIT

// Package metrics holds the OpenTelemetry instruments for the capture and
// analysis pipeline. Components take a *Metrics so tests can back it with a
// ManualReader; Default uses the global provider.
package metrics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const meterName = "audiolyzer"

// Instrument names.
const (
	BlocksPublishedName  = "audiolyzer.blocks.published"
	FramesAnalyzedName   = "audiolyzer.frames.analyzed"
	FramesSkippedName    = "audiolyzer.frames.skipped"
	AnalysisDurationName = "audiolyzer.analysis.duration"
)

// SkipReason labels a tick that produced no frame.
type SkipReason string

const (
	SkipEmpty      SkipReason = "empty"      // nothing published yet
	SkipBusy       SkipReason = "busy"       // slot held by the producer
	SkipDegenerate SkipReason = "degenerate" // block too short to window
)

// Metrics holds all instruments. The OTel types are safe for concurrent use.
type Metrics struct {
	// BlocksPublished counts blocks handed over by the audio callback.
	BlocksPublished metric.Int64Counter

	// FramesAnalyzed counts ticks that produced an output frame.
	FramesAnalyzed metric.Int64Counter

	// FramesSkipped counts ticks that produced nothing, by reason.
	FramesSkipped metric.Int64Counter

	// AnalysisDuration tracks window+transform+map+smooth time per frame.
	AnalysisDuration metric.Float64Histogram

	// Attribute options are built once so recording on the audio and
	// analysis paths does not allocate.
	skipOpts map[SkipReason]metric.AddOption
}

// analysisBuckets are in seconds and sized for sub-millisecond frames.
var analysisBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01,
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.BlocksPublished, err = m.Int64Counter(BlocksPublishedName,
		metric.WithDescription("Sample blocks published by the capture callback."),
	); err != nil {
		return nil, err
	}
	if met.FramesAnalyzed, err = m.Int64Counter(FramesAnalyzedName,
		metric.WithDescription("Analysis ticks that produced a frame."),
	); err != nil {
		return nil, err
	}
	if met.FramesSkipped, err = m.Int64Counter(FramesSkippedName,
		metric.WithDescription("Analysis ticks skipped, by reason."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram(AnalysisDurationName,
		metric.WithDescription("Time spent analyzing one block."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}

	met.skipOpts = make(map[SkipReason]metric.AddOption, 3)
	for _, r := range []SkipReason{SkipEmpty, SkipBusy, SkipDegenerate} {
		met.skipOpts[r] = metric.WithAttributeSet(attribute.NewSet(attribute.String("reason", string(r))))
	}
	return met, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// Default returns the package-level Metrics backed by otel.GetMeterProvider.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("metrics: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// RecordSkip counts one skipped tick.
func (m *Metrics) RecordSkip(ctx context.Context, reason SkipReason) {
	opt, ok := m.skipOpts[reason]
	if !ok {
		opt = metric.WithAttributes(attribute.String("reason", string(reason)))
	}
	m.FramesSkipped.Add(ctx, 1, opt)
}

// Summary collects reader and renders every counter total on one line, for
// the shutdown log. Histograms are reported as count and mean.
func Summary(ctx context.Context, reader *sdkmetric.ManualReader) (string, error) {
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		return "", fmt.Errorf("collect metrics: %w", err)
	}

	var parts []string
	for _, sm := range rm.ScopeMetrics {
		for _, mt := range sm.Metrics {
			switch data := mt.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					name := mt.Name
					if reason, ok := dp.Attributes.Value("reason"); ok {
						name += "{" + reason.AsString() + "}"
					}
					parts = append(parts, fmt.Sprintf("%s=%d", name, dp.Value))
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					mean := 0.0
					if dp.Count > 0 {
						mean = dp.Sum / float64(dp.Count)
					}
					parts = append(parts, fmt.Sprintf("%s.count=%d %s.mean=%.6fs", mt.Name, dp.Count, mt.Name, mean))
				}
			}
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " "), nil
}
