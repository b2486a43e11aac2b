package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/ticketdesk/transcript-ledger/internal/config"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()
	m.RecordEvent("transcript", "logged")
	m.RecordEvent("transcript", "logged")
	m.RecordEvent("reaction", "unrecognized")
	m.RecordStoreError("rate_limited")
	m.RecordRefresh(false)
	m.RecordRequest("/reports/referrals", "GET", 200, 10*time.Millisecond)

	require.Equal(t, 2.0, testutil.ToFloat64(m.eventCount.WithLabelValues("transcript", "logged")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.eventCount.WithLabelValues("reaction", "unrecognized")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("rate_limited")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.refreshCount.WithLabelValues("error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/reports/referrals", "GET", "200")))
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordEvent("a", "b")
		m.RecordStoreError("x")
		m.RecordRefresh(true)
		m.RecordError("/", "GET", "NOT_FOUND")
	})
}

func TestNewLoggerFallsBackOnBadLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestNewLoggerWithFile(t *testing.T) {
	path := t.TempDir() + "/ledger.log"
	logger, err := NewLogger(config.LoggerConfig{Level: "debug", File: path, MaxSizeMB: 1, MaxBackups: 1})
	require.NoError(t, err)
	logger.Info("hello")
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
