// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts batch outcomes for the node-exporter textfile
// collector. The engine is a batch job, so metrics are written to a file
// at the end of a run instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pdiddy/governance-engine/pkg/types"
)

// Metrics holds the engine's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Records by outcome: scored or rejected.
	Records *prometheus.CounterVec

	// Results by governance channel.
	Channels *prometheus.CounterVec

	// Rule outcomes by rule and verdict.
	RuleVerdicts *prometheus.CounterVec

	// Rejections by offending field.
	Rejections *prometheus.CounterVec

	Collisions prometheus.Counter

	BatchDuration prometheus.Histogram
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_engine_records_total",
			Help: "Input records by processing outcome",
		}, []string{"outcome"}), // outcome: "scored", "rejected"

		Channels: f.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_engine_channel_total",
			Help: "Scored records by governance channel",
		}, []string{"channel"}),

		RuleVerdicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_engine_rule_verdicts_total",
			Help: "Rule outcomes by rule and verdict",
		}, []string{"rule", "verdict"}),

		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "governance_engine_rejections_total",
			Help: "Rejected records by offending field",
		}, []string{"field"}),

		Collisions: f.NewCounter(prometheus.CounterOpts{
			Name: "governance_engine_identifier_collisions_total",
			Help: "Identifier collisions reported in traces",
		}),

		BatchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "governance_engine_batch_duration_seconds",
			Help:    "Wall time of one evaluation batch",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		}),
	}
}

// ObserveResult records one scored result.
func (m *Metrics) ObserveResult(res types.GovernanceResult) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues("scored").Inc()
	m.Channels.WithLabelValues(string(res.Channel)).Inc()
	for _, o := range res.Outcomes {
		m.RuleVerdicts.WithLabelValues(string(o.Rule), string(o.Verdict)).Inc()
	}
	m.Collisions.Add(float64(len(res.Collisions)))
}

// ObserveRejection records one rejected record.
func (m *Metrics) ObserveRejection(rej types.Rejection) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues("rejected").Inc()
	m.Rejections.WithLabelValues(rej.Field).Inc()
}

// ObserveBatch records the duration of a batch.
func (m *Metrics) ObserveBatch(d time.Duration) {
	if m != nil {
		m.BatchDuration.Observe(d.Seconds())
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
