package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"sync"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	EligibilityChecksCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_eligibility_checks_total",
			Help: "Total number of completed eligibility checks by resulting eligibility status.",
		},
		[]string{"status"},
	)
	EligibilityCheckDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_eligibility_check_duration_seconds",
			Help:    "Duration of a single eligibility check in seconds.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	CriterionResultsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_criterion_results_total",
			Help: "Total number of evaluated criteria by type and result.",
		},
		[]string{"criteria_type", "result"},
	)
	TransitionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_status_transitions_total",
			Help: "Total number of requested status transitions by target status and outcome.",
		},
		[]string{"target", "outcome"},
	)
	NotificationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_notifications_total",
			Help: "Total number of notification enqueue attempts by template and outcome.",
		},
		[]string{"template", "outcome"},
	)
	ReevaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portal_bulk_reevaluation_duration_seconds",
			Help:    "Duration of each bulk re-evaluation in seconds.",
			Buckets: []float64{1, 10, 60, 300, 900, 1800},
		},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ErrorsCounter)
		prometheus.MustRegister(EligibilityChecksCounter)
		prometheus.MustRegister(EligibilityCheckDuration)
		prometheus.MustRegister(CriterionResultsCounter)
		prometheus.MustRegister(TransitionsCounter)
		prometheus.MustRegister(NotificationsCounter)
		prometheus.MustRegister(ReevaluationDuration)
	})
}

func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
