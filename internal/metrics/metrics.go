// Package metrics exposes the service's prometheus collectors,
// scraped via promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QuizzesCreated counts generated quizzes.
	QuizzesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qbank_quizzes_created_total",
		Help: "Number of quizzes generated.",
	})

	// QuizzesEnded counts finalized quizzes.
	QuizzesEnded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qbank_quizzes_ended_total",
		Help: "Number of quizzes ended.",
	})

	// AnswersSubmitted counts answer submissions by correctness.
	AnswersSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qbank_answers_submitted_total",
		Help: "Number of answers submitted, labeled by result.",
	}, []string{"result"})

	// SelectionSize observes how many questions selections return.
	SelectionSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qbank_selection_size",
		Help:    "Number of questions returned per selection.",
		Buckets: prometheus.LinearBuckets(0, 5, 9),
	})
)
