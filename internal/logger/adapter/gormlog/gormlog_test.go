package gormlog_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GoSiteSettings/GoSiteSettings/internal/logger/adapter/gormlog"
)

func TestTrace(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	sqlFunc := func() (string, int64) { return "SELECT * FROM settings", 3 }

	type testCase struct {
		name      string
		slow      time.Duration
		traceAll  bool
		mode      gormlogger.LogLevel
		begin     time.Time
		err       error
		wantEmpty bool
		want      []string
	}

	testCases := []testCase{
		{
			name:  "error is logged",
			mode:  gormlogger.Warn,
			begin: time.Now(),
			err:   errors.New("no such table: settings"), //nolint:goerr113
			want:  []string{`"level":"error"`, "no such table", "SELECT * FROM settings", `"rows":3`},
		},
		{
			name:      "record not found is not an error",
			mode:      gormlogger.Warn,
			begin:     time.Now(),
			err:       gorm.ErrRecordNotFound,
			wantEmpty: true,
		},
		{
			name:  "slow query is a warning",
			mode:  gormlogger.Warn,
			slow:  time.Millisecond,
			begin: time.Now().Add(-time.Second),
			want:  []string{`"level":"warn"`, "slow query"},
		},
		{
			name:      "fast query without trace is silent",
			mode:      gormlogger.Warn,
			slow:      time.Hour,
			begin:     time.Now(),
			wantEmpty: true,
		},
		{
			name:     "trace all",
			mode:     gormlogger.Warn,
			traceAll: true,
			begin:    time.Now(),
			want:     []string{`"level":"trace"`, "SELECT * FROM settings"},
		},
		{
			name:      "silent mode",
			mode:      gormlogger.Silent,
			traceAll:  true,
			begin:     time.Now(),
			err:       errors.New("boom"), //nolint:goerr113
			wantEmpty: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := gormlog.New(zerolog.New(&buf), tc.slow, tc.traceAll).LogMode(tc.mode)
			l.Trace(context.Background(), tc.begin, sqlFunc, tc.err)

			if tc.wantEmpty {
				assert.Empty(t, buf.String())
				return
			}

			for _, w := range tc.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer

	l := gormlog.New(zerolog.New(&buf), 0, false)

	l.Info(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String(), "info is below the default warn mode")

	l.Warn(context.Background(), "warned %d", 2)
	assert.Contains(t, buf.String(), "warned 2")

	buf.Reset()
	l.LogMode(gormlogger.Info).Info(context.Background(), "shown %s", "now")
	assert.Contains(t, buf.String(), "shown now")

	buf.Reset()
	l.LogMode(gormlogger.Silent).Error(context.Background(), "never")
	assert.Empty(t, buf.String())
}
