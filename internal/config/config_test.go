package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SPREADSHEET_ID", "sheet-1")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "sheet-1", cfg.Sheet.SpreadsheetID)
	require.Equal(t, "C", cfg.Sheet.TicketColumn)
	require.Equal(t, "D", cfg.Sheet.ApprovalColumn)
	require.Equal(t, "F", cfg.Sheet.ReferralColumn)
	require.Equal(t, 2, cfg.Sheet.FirstRow)
	require.Equal(t, 10000, cfg.Sheet.LastRow)
	require.Equal(t, 59*time.Minute+59*time.Second, cfg.Credentials.RefreshInterval)
	require.Equal(t, "America/Edmonton", cfg.Ledger.Timezone)
	require.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	require.Equal(t, 12, cfg.Auth.BcryptCost)
	require.Empty(t, cfg.Auth.ReporterKeyHash)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SHEET_TICKET_COLUMN", "B")
	t.Setenv("SHEET_LAST_ROW", "500")
	t.Setenv("CREDENTIAL_REFRESH_INTERVAL", "10m")
	t.Setenv("LEDGER_GUARD_TTL_SECONDS", "5")
	t.Setenv("LOG_FILE", "/tmp/ledger.log")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "B", cfg.Sheet.TicketColumn)
	require.Equal(t, 500, cfg.Sheet.LastRow)
	require.Equal(t, 10*time.Minute, cfg.Credentials.RefreshInterval)
	require.Equal(t, 5*time.Second, cfg.Ledger.GuardTTL())
	require.Equal(t, "/tmp/ledger.log", cfg.Logger.File)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CREDENTIAL_REFRESH_INTERVAL", "hourly")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("CREDENTIAL_REFRESH_INTERVAL", "1h")
	t.Setenv("SHEET_FIRST_ROW", "20")
	t.Setenv("SHEET_LAST_ROW", "10")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("SHEET_FIRST_ROW", "2")
	t.Setenv("REDIS_DB", "x")
	_, err = Load()
	require.Error(t, err)
}

func TestLedgerLocation(t *testing.T) {
	loc, err := LedgerConfig{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	require.Equal(t, time.UTC, loc)

	_, err = LedgerConfig{Timezone: "Mars/Olympus"}.Location()
	require.Error(t, err)
}
