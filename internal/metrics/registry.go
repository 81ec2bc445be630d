package metrics

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/plexsphere/hwcountd/internal/counters"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hwcountd"

// Result label values for requests_total.
const (
	ResultOK               = "ok"
	ResultPermissionDenied = "permission_denied"
	ResultUnknown          = "unknown"
	ResultHardware         = "hardware"
	ResultPartial          = "partial"
	ResultBadValue         = "bad_value"
	ResultValueUnavailable = "unavailable"
	ResultStopped          = "stopped"
	ResultError            = "error"
)

// Registry holds the agent's self metrics. It implements counters.Observer
// and must be installed with Agent.SetObserver before the agent runs.
type Registry struct {
	reg    *prometheus.Registry
	logger *slog.Logger

	rebuilds        *prometheus.CounterVec
	rebuildFailures *prometheus.CounterVec
	addFailures     *prometheus.CounterVec
	multiplexErrors prometheus.Counter
	activeCounters  prometheus.Gauge
	requested       prometheus.Gauge
	running         prometheus.Gauge
	requests        *prometheus.CounterVec
	catalogCounters prometheus.Gauge
	info            *prometheus.GaugeVec
}

// NewRegistry creates a Registry. reader may be nil to skip host metrics.
func NewRegistry(cfg Config, reader SystemReader, logger *slog.Logger) *Registry {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		reg:    prometheus.NewRegistry(),
		logger: logger,
		rebuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "rebuilds_total",
			Help:      "Total number of event set rebuilds.",
		}, []string{"reason"}),
		rebuildFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "rebuild_failures_total",
			Help:      "Total number of rebuilds that left a requested counter idle.",
		}, []string{"reason"}),
		addFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "add_failures_total",
			Help:      "Total number of counters the backend refused to add.",
		}, []string{"counter"}),
		multiplexErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "multiplex_errors_total",
			Help:      "Total number of event sets created without the requested multiplexing.",
		}),
		activeCounters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "active_counters",
			Help:      "Number of counters in the current event set.",
		}),
		requested: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "requested_counters",
			Help:      "Number of counters requested at the last rebuild.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "eventset",
			Name:      "running",
			Help:      "1 if the event set is counting.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of fetch and store requests by operation and result.",
		}, []string{"op", "result"}),
		catalogCounters: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "counters",
			Help:      "Number of hardware counters discovered at startup.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backend_info",
			Help:      "Counter backend in use; always 1.",
		}, []string{"backend"}),
	}

	r.reg.MustRegister(
		r.rebuilds,
		r.rebuildFailures,
		r.addFailures,
		r.multiplexErrors,
		r.activeCounters,
		r.requested,
		r.running,
		r.requests,
		r.catalogCounters,
		r.info,
	)
	if reader != nil {
		r.reg.MustRegister(NewSystemCollector(reader, logger))
	}
	if cfg.GoRuntime {
		r.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// SetCatalog records the backend name and the discovered counter count.
func (r *Registry) SetCatalog(backend string, n int) {
	r.info.WithLabelValues(backend).Set(1)
	r.catalogCounters.Set(float64(n))
}

// Rebuilt implements counters.Observer.
func (r *Registry) Rebuilt(report counters.RebuildReport) {
	reason := string(report.Reason)
	r.rebuilds.WithLabelValues(reason).Inc()
	if report.Err() != nil {
		r.rebuildFailures.WithLabelValues(reason).Inc()
	}
	for _, f := range report.Failed {
		r.addFailures.WithLabelValues(f.Code).Inc()
	}
	if report.MultiplexErr != nil {
		r.multiplexErrors.Inc()
	}
	r.activeCounters.Set(float64(report.Active))
	r.requested.Set(float64(report.Requested))
	if report.Started {
		r.running.Set(1)
	} else {
		r.running.Set(0)
	}
}

// Request implements counters.Observer.
func (r *Registry) Request(op string, err error) {
	r.requests.WithLabelValues(op, Result(err)).Inc()
}

// Result classifies a request error into a result label value.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, counters.ErrPermissionDenied):
		return ResultPermissionDenied
	case errors.Is(err, counters.ErrUnknownCounter):
		return ResultUnknown
	case errors.Is(err, counters.ErrHardware):
		return ResultHardware
	case errors.Is(err, counters.ErrPartialValidation):
		return ResultPartial
	case errors.Is(err, counters.ErrBadValue):
		return ResultBadValue
	case errors.Is(err, counters.ErrValueUnavailable):
		return ResultValueUnavailable
	case errors.Is(err, counters.ErrStopped):
		return ResultStopped
	}
	return ResultError
}

// Gatherer returns the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler returns the exposition handler.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{
		ErrorLog:      slog.NewLogLogger(r.logger.Handler(), slog.LevelWarn),
		ErrorHandling: promhttp.ContinueOnError,
	})
}
