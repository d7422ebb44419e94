package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/behave/internal/runner"
)

var _ runner.Observer = (*Collector)(nil)

// Collector turns tick reports into Prometheus series.
type Collector struct {
	ticks    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates the tick metrics and registers them with reg. A nil
// reg means prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		ticks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_ticks_total",
				Help: "Total number of tree ticks by resulting status",
			},
			[]string{"tree", "status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "behave_tick_errors_total",
				Help: "Total number of tree ticks that returned an error",
			},
			[]string{"tree"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "behave_tick_duration_seconds",
				Help:    "Duration of tree ticks",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"tree"},
		),
	}

	for _, col := range []prometheus.Collector{c.ticks, c.errors, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register tick metrics: %w", err)
		}
	}
	return c, nil
}

func (c *Collector) ObserveTick(report runner.TickReport) {
	c.duration.WithLabelValues(report.Tree).Observe(report.Duration.Seconds())
	if report.Err != nil {
		c.errors.WithLabelValues(report.Tree).Inc()
		return
	}
	c.ticks.WithLabelValues(report.Tree, report.Status.String()).Inc()
}
