package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App         AppConfig
	Discord     DiscordConfig
	Sheet       SheetConfig
	Google      GoogleConfig
	Ledger      LedgerConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Logger      LoggerConfig
	Auth        AuthConfig
	Credentials CredentialsConfig
}

// AppConfig controls the HTTP side-channel (health, metrics, reports).
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig identifies the bot and the channels it watches.
type DiscordConfig struct {
	Token               string
	CommandPrefix       string
	TranscriptChannelID string
	StaffChannelID      string
	TicketBotID         string
}

// SheetConfig pins the spreadsheet addressing contract.
type SheetConfig struct {
	SpreadsheetID  string
	AppendRange    string
	TicketColumn   string
	ApprovalColumn string
	ReferralColumn string
	FirstRow       int
	LastRow        int
}

// GoogleConfig points at the OAuth client and token files.
type GoogleConfig struct {
	CredentialsFile string
	TokenFile       string
}

// CredentialsConfig controls the background token refresh.
type CredentialsConfig struct {
	RefreshInterval time.Duration
}

// LedgerConfig holds record rendering and guard settings.
type LedgerConfig struct {
	Timezone    string
	GuardTTLSec int
	DryRun      bool
}

// PostgresConfig holds DB connection values for the decision history.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values for the log guard.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// AuthConfig defines the reporting API token parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	// ReporterKeyHash is the bcrypt hash of the key exchanged for reporter tokens.
	ReporterKeyHash string
	BcryptCost      int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	refresh, err := time.ParseDuration(getEnv("CREDENTIAL_REFRESH_INTERVAL", "59m59s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CREDENTIAL_REFRESH_INTERVAL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "transcript-ledger"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:               os.Getenv("DISCORD_TOKEN"),
			CommandPrefix:       getEnv("COMMAND_PREFIX", "/"),
			TranscriptChannelID: os.Getenv("TRANSCRIPT_CHANNEL_ID"),
			StaffChannelID:      os.Getenv("STAFF_CHANNEL_ID"),
			TicketBotID:         os.Getenv("TICKET_BOT_ID"),
		},
		Sheet: SheetConfig{
			SpreadsheetID:  os.Getenv("SPREADSHEET_ID"),
			AppendRange:    getEnv("SHEET_APPEND_RANGE", "A:F"),
			TicketColumn:   getEnv("SHEET_TICKET_COLUMN", "C"),
			ApprovalColumn: getEnv("SHEET_APPROVAL_COLUMN", "D"),
			ReferralColumn: getEnv("SHEET_REFERRAL_COLUMN", "F"),
			FirstRow:       getEnvAsInt("SHEET_FIRST_ROW", 2),
			LastRow:        getEnvAsInt("SHEET_LAST_ROW", 10000),
		},
		Google: GoogleConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			TokenFile:       getEnv("GOOGLE_TOKEN_FILE", "token.json"),
		},
		Credentials: CredentialsConfig{
			RefreshInterval: refresh,
		},
		Ledger: LedgerConfig{
			Timezone:    getEnv("LEDGER_TIMEZONE", "America/Edmonton"),
			GuardTTLSec: getEnvAsInt("LEDGER_GUARD_TTL_SECONDS", 30),
			DryRun:      getEnvAsBool("LEDGER_DRY_RUN", false),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 5)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 1)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 50),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ReporterKeyHash:       os.Getenv("AUTH_REPORTER_KEY_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Sheet.FirstRow < 1 || c.Sheet.LastRow < c.Sheet.FirstRow {
		return fmt.Errorf("invalid sheet rows %d..%d", c.Sheet.FirstRow, c.Sheet.LastRow)
	}
	if c.Credentials.RefreshInterval <= 0 {
		return fmt.Errorf("CREDENTIAL_REFRESH_INTERVAL must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location loads the ledger timezone.
func (l LedgerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// GuardTTL returns how long a log reservation is held.
func (l LedgerConfig) GuardTTL() time.Duration {
	if l.GuardTTLSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(l.GuardTTLSec) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
