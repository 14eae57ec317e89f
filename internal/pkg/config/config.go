package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, key material, etc.), security settings
// - default: Values common across all environments (timezone, timeout, etc.), standard settings
// - Values marked "encrypted" hold Fernet tokens produced by `notifyctl encrypt`
// -----------------------------------------------------------------------------

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Store    StoreConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	JWT      JWTConfig
	Trigger  TriggerConfig
	Crypto   CryptoConfig
	Gateway  GatewayConfig
	Sources  SourcesConfig
	Dispatch DispatchConfig
	Schedule ScheduleConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	DBName   string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Africa/Kampala"`
	MaxConns int32  `envconfig:"DB_MAX_CONNS" default:"10"`
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type StoreConfig struct {
	Driver     string `envconfig:"OUTCOME_STORE" default:"postgres"`
	SQLitePath string `envconfig:"OUTCOME_STORE_SQLITE_PATH" default:"notify.db"`
}

// RedisConfig is optional: an empty address falls back to an in-process run lock.
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization,X-API-Key"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Africa/Kampala"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"10800"` // 3*60*60
}

type JWTConfig struct {
	Secret string `envconfig:"JWT_SECRET" required:"true"`
}

type TriggerConfig struct {
	// bcrypt hash of the key accepted on /internal/dispatch; empty disables the endpoint.
	APIKeyHash string `envconfig:"TRIGGER_API_KEY_HASH"`
}

type CryptoConfig struct {
	EncryptionKey string `envconfig:"ENCRYPTION_KEY" required:"true"`
}

type GatewayConfig struct {
	SMSURL             string        `envconfig:"SMS_GATEWAY_URL"`     // encrypted
	SMSSenderName      string        `envconfig:"SMS_SENDER_NAME"`     // encrypted
	SMSPassword        string        `envconfig:"SMS_PASSWORD"`        // encrypted
	EmailURL           string        `envconfig:"EMAIL_GATEWAY_URL"`   // encrypted
	EmailSender        string        `envconfig:"EMAIL_SENDER" default:"notifications@pridemicrofinance.co.ug"`
	Timeout            time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
	InsecureSkipVerify bool          `envconfig:"GATEWAY_INSECURE_SKIP_VERIFY" default:"true"`
}

// SourcesConfig holds the upstream ESB credentials and one endpoint per category. All encrypted.
type SourcesConfig struct {
	User            string `envconfig:"ESB_USER"`
	Password        string `envconfig:"ESB_PASSWORD"`
	APIKey          string `envconfig:"ESB_API_KEY"`
	LoansDueURL     string `envconfig:"LOANS_DUE_ESB_URL"`
	BirthdaysURL    string `envconfig:"BIRTHDAYS_ESB_URL"`
	GroupLoansURL   string `envconfig:"GROUP_LOANS_ESB_URL"`
	ATMExpiryURL    string `envconfig:"ATM_EXPIRY_ESB_URL"`
	EscrowURL       string `envconfig:"ESCROW_ESB_URL"`
	LedgerReportURL string `envconfig:"LEDGER_REPORT_ESB_URL"`
	CustomURL       string `envconfig:"CUSTOM_MESSAGE_ESB_URL"`
}

type DispatchConfig struct {
	ThrottleInterval time.Duration `envconfig:"DISPATCH_THROTTLE_INTERVAL" default:"5s"`
	RetryMaxAttempts int           `envconfig:"DISPATCH_RETRY_MAX_ATTEMPTS" default:"5"`
	RetryDelay       time.Duration `envconfig:"DISPATCH_RETRY_DELAY" default:"300s"`
	RetryBackoff     string        `envconfig:"DISPATCH_RETRY_BACKOFF" default:"fixed"`
	LockTTL          time.Duration `envconfig:"DISPATCH_LOCK_TTL" default:"2h"`
	AlertEmails      []string      `envconfig:"DISPATCH_ALERT_EMAILS"`

	// Test mode never activates implicitly.
	TestMode      bool   `envconfig:"DISPATCH_TEST_MODE" default:"false"`
	TestRecipient string `envconfig:"DISPATCH_TEST_RECIPIENT"`
	TestEmail     string `envconfig:"DISPATCH_TEST_EMAIL"`
	TestLimit     int    `envconfig:"DISPATCH_TEST_LIMIT" default:"10"`
}

type ScheduleConfig struct {
	Enabled      bool   `envconfig:"SCHEDULE_ENABLED" default:"true"`
	TimeZone     string `envconfig:"SCHEDULE_TIMEZONE" default:"Africa/Kampala"`
	LoansDue     string `envconfig:"SCHEDULE_LOANS_DUE" default:"50 6 * * *"`
	Birthdays    string `envconfig:"SCHEDULE_BIRTHDAYS" default:"20 7 * * *"`
	GroupLoans   string `envconfig:"SCHEDULE_GROUP_LOANS" default:"17 8 * * *"`
	ATMExpiry    string `envconfig:"SCHEDULE_ATM_EXPIRY" default:"0 8 2 * *"`
	Escrow       string `envconfig:"SCHEDULE_ESCROW" default:"30 6 * * *"`
	LedgerReport string `envconfig:"SCHEDULE_LEDGER_REPORT" default:"10 6 * * *"`
}

// URLFor returns the encrypted endpoint configured for a category name.
func (c SourcesConfig) URLFor(category string) string {
	switch category {
	case "loans_due":
		return c.LoansDueURL
	case "birthdays":
		return c.BirthdaysURL
	case "group_loans":
		return c.GroupLoansURL
	case "atm_expiry":
		return c.ATMExpiryURL
	case "escrow":
		return c.EscrowURL
	case "ledger_report":
		return c.LedgerReportURL
	case "custom":
		return c.CustomURL
	default:
		return ""
	}
}

// Specs maps category names to cron expressions; blank expressions are left out.
func (c ScheduleConfig) Specs() map[string]string {
	all := map[string]string{
		"loans_due":     c.LoansDue,
		"birthdays":     c.Birthdays,
		"group_loans":   c.GroupLoans,
		"atm_expiry":    c.ATMExpiry,
		"escrow":        c.Escrow,
		"ledger_report": c.LedgerReport,
	}
	specs := make(map[string]string, len(all))
	for name, spec := range all {
		if strings.TrimSpace(spec) != "" {
			specs[name] = spec
		}
	}
	return specs
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		if c.DB.User == "" || c.DB.DBName == "" {
			return errors.New("DB_USER and DB_NAME are required for the postgres outcome store")
		}
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return errors.New("OUTCOME_STORE_SQLITE_PATH is required for the sqlite outcome store")
		}
	default:
		return fmt.Errorf("unsupported OUTCOME_STORE %q", c.Store.Driver)
	}
	if c.Dispatch.RetryMaxAttempts < 1 {
		return errors.New("DISPATCH_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Dispatch.ThrottleInterval < 0 {
		return errors.New("DISPATCH_THROTTLE_INTERVAL must not be negative")
	}
	if c.Dispatch.TestMode && c.Dispatch.TestRecipient == "" {
		return errors.New("DISPATCH_TEST_RECIPIENT is required when DISPATCH_TEST_MODE is on")
	}
	return nil
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Africa/Kampala",
			MaxConns: 4,
		},
		Store: StoreConfig{
			Driver:     StoreDriverSQLite,
			SQLitePath: ":memory:",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Africa/Kampala",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 10800,
		},
		JWT: JWTConfig{Secret: "test-secret"},
		Gateway: GatewayConfig{
			EmailSender:        "test@example.com",
			Timeout:            2 * time.Second,
			InsecureSkipVerify: true,
		},
		Dispatch: DispatchConfig{
			ThrottleInterval: 0,
			RetryMaxAttempts: 5,
			RetryDelay:       300 * time.Second,
			RetryBackoff:     "fixed",
			LockTTL:          time.Minute,
			TestLimit:        10,
		},
		Schedule: ScheduleConfig{TimeZone: "Africa/Kampala"},
	}
}
