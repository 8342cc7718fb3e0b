package matching

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rankRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matching_rank_requests_total",
			Help: "Total number of rank requests",
		},
		[]string{"status"},
	)

	candidatesScoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_scored_total",
			Help: "Total number of candidates scored",
		},
	)

	candidatesSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_candidates_skipped_total",
			Help: "Total number of candidates skipped due to scoring failures",
		},
	)

	matchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_match_scores",
			Help:    "Distribution of overall match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	rankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matching_rank_duration_seconds",
			Help:    "Time spent serving rank requests",
			Buckets: prometheus.DefBuckets,
		},
	)

	picksGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matching_picks_generated_total",
			Help: "Total number of daily picks generated",
		},
	)
)

func RecordRankRequest(status string) {
	rankRequestsTotal.WithLabelValues(status).Inc()
}

func RecordCandidateScored() {
	candidatesScoredTotal.Inc()
}

func RecordCandidateSkipped() {
	candidatesSkippedTotal.Inc()
}

func RecordMatchScore(score float64) {
	matchScores.Observe(score)
}

func RecordRankDuration(duration time.Duration) {
	rankDuration.Observe(duration.Seconds())
}

func RecordPickGenerated() {
	picksGeneratedTotal.Inc()
}
