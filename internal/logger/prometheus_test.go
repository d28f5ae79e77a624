package logger_test

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSiteSettings/GoSiteSettings/internal/logger"
)

// logStatements reads the counter of level from the default registry.
func logStatements(t *testing.T, level string) float64 {
	t.Helper()

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != logger.LogStatementsMetric {
			continue
		}

		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "level" && lp.GetValue() == level {
					return m.GetCounter().GetValue()
				}
			}
		}
	}

	return 0
}

func TestPrometheusHook(t *testing.T) {
	oldLevel := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(oldLevel) })

	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer

	l := zerolog.New(&buf).Hook(logger.NewPrometheusHook("site-settings"))

	warnBefore := logStatements(t, "warn")
	errorBefore := logStatements(t, "error")

	l.Warn().Str("key", "contact_email").Msg("concurrent write rejected by the single value index")
	l.Warn().Msg("slow query")
	l.Error().Msg("query failed")
	l.Log().Str("URI", "/api/settings").Send()

	assert.InDelta(t, warnBefore+2, logStatements(t, "warn"), 0)
	assert.InDelta(t, errorBefore+1, logStatements(t, "error"), 0)
	assert.Equal(t, 4, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestPrometheusHookZeroValue(t *testing.T) {
	assert.NotPanics(t, func() {
		logger.PrometheusHook{}.Run(nil, zerolog.ErrorLevel, "no counter")
	})
}
