package setting

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeConflict = "conflict"
	outcomeError    = "error"
)

var writes = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "site_settings_writes_total",
		Help: "Setting write operations by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)

func observeWrite(operation string, err error) {
	writes.WithLabelValues(operation, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case isTooManyForKey(err):
		return outcomeConflict
	case isValidation(err):
		return outcomeInvalid
	default:
		return outcomeError
	}
}
