package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// LogStatementsMetric counts log events by level.
const LogStatementsMetric = "site_settings_log_statements_total"

var (
	logStatements     *prometheus.CounterVec //nolint:gochecknoglobals
	logStatementsOnce sync.Once              //nolint:gochecknoglobals
)

// PrometheusHook counts every leveled log event.
type PrometheusHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook. Access lines carry no level and are not counted.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || h.counter == nil {
		return
	}

	h.counter.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook registers the counter on first use, the service label
// of the first call sticks for the process.
func NewPrometheusHook(service string) PrometheusHook {
	logStatementsOnce.Do(func() {
		logStatements = promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        LogStatementsMetric,
			Help:        "Number of log statements by level.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"level"})
	})

	return PrometheusHook{counter: logStatements}
}
