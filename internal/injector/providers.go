package injector

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/loader"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/observability/metrics"
)

// Options are the process-level inputs to the provider graph.
type Options struct {
	LogLevel log.Level
}

// App is the shared infrastructure a command needs to load and run trees.
type App struct {
	Logger    log.Log
	Events    bus.EventBus
	Registry  *loader.Registry
	Metrics   *prometheus.Registry
	Collector *metrics.Collector
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideEventBus,
	ProvideRegistry,
	ProvideMetricsRegistry,
	ProvideCollector,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(opts Options) log.Log {
	logger := log.Provide()
	logger.SetLevel(opts.LogLevel)
	return logger
}

func ProvideEventBus() bus.EventBus {
	return bus.New()
}

// ProvideRegistry returns the builtin leaves, logging through logger.
func ProvideRegistry(logger log.Log) *loader.Registry {
	reg := loader.DefaultRegistry()
	reg.SetLogger(logger.With(log.String("component", "tree")))
	return reg
}

func ProvideMetricsRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func ProvideCollector(reg *prometheus.Registry) (*metrics.Collector, error) {
	return metrics.NewCollector(reg)
}
