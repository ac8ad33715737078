package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts ingestion runs by source and terminal status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityfeed_ingestion_runs_total",
		Help: "Ingestion runs by source and terminal status.",
	}, []string{"source", "status"})

	// CandidatesTotal counts candidate outcomes within runs.
	CandidatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cityfeed_candidates_total",
		Help: "Candidate outcomes (inserted, skipped, error) by source.",
	}, []string{"source", "outcome"})

	// FetchRetries counts transient fetch failures that triggered a retry.
	FetchRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cityfeed_fetch_retries_total",
		Help: "Fetch attempts retried after a transient failure.",
	})
)
