package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuestionsValidated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_questions_validated_total",
			Help: "Total number of questions validated, by risk level",
		},
		[]string{"risk_level"},
	)

	ValidationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quizguard_validation_cache_hits_total",
			Help: "Total number of validation results served from cache",
		},
	)

	ContradictionsFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_contradictions_total",
			Help: "Total number of contradictions detected, by kind",
		},
		[]string{"kind"},
	)

	ReviewItemsQueued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_review_items_queued_total",
			Help: "Total number of questions routed to human review, by priority",
		},
		[]string{"priority"},
	)

	AuditEntriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_audit_entries_total",
			Help: "Total number of audit entries appended, by review status",
		},
		[]string{"review_status"},
	)

	AdapterErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_adapter_errors_total",
			Help: "Total number of failed model calls, by model and kind",
		},
		[]string{"model", "kind"},
	)

	ConsensusOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quizguard_consensus_outcomes_total",
			Help: "Total number of consensus rounds, by outcome",
		},
		[]string{"outcome"},
	)

	ConsensusAgreement = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quizguard_consensus_agreement",
			Help:    "Mean pairwise agreement of model outputs",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "quizguard_batch_duration_seconds",
			Help: "Duration of batch validation in seconds",
		},
	)
)

// WriteTextfile writes the default registry in the Prometheus text format,
// for collection by node_exporter's textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
