// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"

	// MinSecretLength is the shortest HS256 signing secret accepted at boot.
	MinSecretLength = 32
)

// Config holds all configuration for the service. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Port           string
	AllowedOrigin  string
	Environment    string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPath         string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBQueryTimeout time.Duration
	JWTSecret      string
	JWTTTL         time.Duration
	BcryptCost     int
	UniformLogin   bool
	CookieSecure   bool
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "10000"),
		AllowedOrigin:  getEnv("FNT_HOST", "http://localhost:3000"),
		Environment:    getEnv("ENVIRONMENT", "production"),
		DBDriver:       getEnv("DB_DRIVER", DriverMySQL),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", ""),
		DBPassword:     getEnv("DB_PW", ""),
		DBName:         getEnv("DB_NAME", ""),
		DBPath:         getEnv("DB_PATH", "./gensupply.db"),
		DBMaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", ""), 10),
		DBMaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", ""), 5),
		DBQueryTimeout: parseDuration(getEnv("DB_QUERY_TIMEOUT", ""), 5*time.Second),
		JWTSecret:      getEnv("JWT_TOKEN", ""),
		JWTTTL:         parseDuration(getEnv("JWT_TTL", ""), 10*time.Minute),
		BcryptCost:     parseInt(getEnv("BCRYPT_COST", ""), bcrypt.DefaultCost),
		UniformLogin:   parseBool(getEnv("AUTH_UNIFORM_LOGIN_ERRORS", ""), false),
		CookieSecure:   parseBool(getEnv("COOKIE_SECURE", ""), true),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        parseInt(getEnv("REDIS_DB", ""), 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the secret and store settings are usable.
func (c *Config) Validate() error {
	isMySQL := c.DBDriver == DriverMySQL
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.AllowedOrigin, validation.Required),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverMySQL, DriverSQLite)),
		validation.Field(&c.DBHost, validation.When(isMySQL, validation.Required)),
		validation.Field(&c.DBUser, validation.When(isMySQL, validation.Required)),
		validation.Field(&c.DBName, validation.When(isMySQL, validation.Required)),
		validation.Field(&c.DBPath, validation.When(c.DBDriver == DriverSQLite, validation.Required)),
		validation.Field(&c.DBMaxOpenConns, validation.Min(1)),
		validation.Field(&c.DBQueryTimeout, validation.Min(time.Millisecond)),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(MinSecretLength, 0)),
		validation.Field(&c.JWTTTL, validation.Min(time.Second)),
		validation.Field(&c.BcryptCost, validation.Min(bcrypt.MinCost), validation.Max(bcrypt.MaxCost)),
	)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseInt(value string, defaultValue int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
