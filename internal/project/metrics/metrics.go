package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the project listing.
type Metrics struct {
	ProjectsCreated prometheus.Counter
	ListDuration    prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProjectsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "landing_projects_created_total",
			Help: "Projects created through the admin API or seed",
		}),
		ListDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "landing_project_list_duration_seconds",
			Help:    "Duration of project listing, cache included",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "landing_project_cache_lookups_total",
			Help: "Project listing cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.ProjectsCreated.Inc()
}

// ObserveList records the duration of a List call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}
