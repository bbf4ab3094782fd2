package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	App      AppConfig
	Store    StoreConfig
	Payroll  PayrollConfig
	Leave    LeaveConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// MigrateOnStart applies embedded migrations before serving.
	MigrateOnStart bool
}

// RedisConfig is optional; without an address ledger locks stay in-process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string
	// AccessTokenTTL applies to tokens minted by the seed command.
	AccessTokenTTL time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	LogFormat   string
	CORSOrigins []string
	// CronEnabled runs the absence and payroll generation jobs in-process.
	CronEnabled bool
}

// StoreConfig selects the persistence backend and bounds each call to it.
type StoreConfig struct {
	Driver      string // postgres, memory
	CallTimeout time.Duration
	RetryDelay  time.Duration
	// SeedEmployees fills memory stores with a generated roster on start.
	SeedEmployees int
}

type PayrollConfig struct {
	OvertimeRatePerHour decimal.Decimal
	Holidays            []string
}

type LeaveConfig struct {
	// Limits maps a leave type to its yearly paid day allowance.
	Limits map[string]int
}

func Load() (*Config, error) {
	// .env is optional outside local development
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	config := &Config{}

	config.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MigrateOnStart: v.GetBool("DB_MIGRATE_ON_START"),
	}

	config.Redis = RedisConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		LockTTL:  v.GetDuration("LOCK_TTL"),
	}

	config.App = AppConfig{
		Port:        v.GetInt("APP_PORT"),
		Env:         v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		LogFormat:   v.GetString("LOG_FORMAT"),
		CORSOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		CronEnabled: v.GetBool("CRON_ENABLED"),
	}

	config.JWT = JWTConfig{
		Secret:         v.GetString("JWT_SECRET_KEY"),
		AccessTokenTTL: v.GetDuration("JWT_ACCESS_TOKEN_TTL"),
	}

	config.Store = StoreConfig{
		Driver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		CallTimeout: v.GetDuration("STORE_CALL_TIMEOUT"),
		RetryDelay:  v.GetDuration("STORE_RETRY_DELAY"),

		SeedEmployees: v.GetInt("STORE_SEED_EMPLOYEES"),
	}

	overtimeRate, err := decimal.NewFromString(v.GetString("PAYROLL_OVERTIME_RATE_PER_HOUR"))
	if err != nil {
		return nil, fmt.Errorf("invalid PAYROLL_OVERTIME_RATE_PER_HOUR: %w", err)
	}
	config.Payroll = PayrollConfig{
		OvertimeRatePerHour: overtimeRate,
		Holidays:            splitList(v.GetString("PAYROLL_HOLIDAYS")),
	}

	limits, err := ParseLeaveLimits(v.GetString("LEAVE_LIMITS"))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_LIMITS: %w", err)
	}
	config.Leave = LeaveConfig{Limits: limits}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "hris_payroll")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MIGRATE_ON_START", true)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "10s")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", "1h")
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CRON_ENABLED", false)
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("STORE_CALL_TIMEOUT", "5s")
	v.SetDefault("STORE_RETRY_DELAY", "100ms")
	v.SetDefault("STORE_SEED_EMPLOYEES", 0)
	v.SetDefault("PAYROLL_OVERTIME_RATE_PER_HOUR", "0")
	v.SetDefault("LEAVE_LIMITS", "Annual:12,Sick:5,Emergency:3,Vacation:15")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Driver != "postgres" && c.Store.Driver != "memory" {
		return fmt.Errorf("STORE_DRIVER must be postgres or memory")
	}
	if c.Store.Driver == "postgres" && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Store.CallTimeout <= 0 {
		return fmt.Errorf("STORE_CALL_TIMEOUT must be positive")
	}
	if c.Payroll.OvertimeRatePerHour.IsNegative() {
		return fmt.Errorf("PAYROLL_OVERTIME_RATE_PER_HOUR must not be negative")
	}
	if len(c.Leave.Limits) == 0 {
		return fmt.Errorf("LEAVE_LIMITS is required")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// ParseLeaveLimits reads "Type:days,Type:days".
func ParseLeaveLimits(raw string) (map[string]int, error) {
	limits := make(map[string]int)
	for _, entry := range splitList(raw) {
		name, days, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("entry %q must be Type:days", entry)
		}
		n, err := strconv.Atoi(strings.TrimSpace(days))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("entry %q must have a non-negative day count", entry)
		}
		limits[name] = n
	}
	return limits, nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return []string{}
	}
	var result []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
