package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/opentextbook-backend/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config holds application configuration values.
type Config struct {
	ServerPort         string
	Environment        string
	ForceHTTPS         bool
	SessionSecret      string
	SessionMaxAge      time.Duration
	SessionStore       string
	RedisAddr          string
	RedisPassword      string
	DatabaseDir        string
	DatabaseFile       string
	BcryptCost         int
	CORSAllowedOrigins []string
	TrustedProxies     []string // IPs or CIDRs whose X-Forwarded-For is believed; empty trusts none
	LoginRatePerMinute int
	LogLevel           string
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	if env != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("PORT", "3000")
	sessionSecret := getEnv("SESSION_SECRET", "")
	sessionHoursStr := getEnv("SESSION_MAX_AGE_HOURS", "24")
	sessionStore := strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory))
	dbDir := getEnv("DATABASE_DIRECTORY", "data")
	dbFile := getEnv("DATABASE_FILE", "textbook.db")
	bcryptCostStr := getEnv("BCRYPT_COST", "10")
	loginRateStr := getEnv("LOGIN_RATE_PER_MINUTE", "10")

	if sessionSecret == "" {
		return nil, errors.New("SESSION_SECRET environment variable must be set")
	}
	if sessionSecret == "keyboard cat" {
		customLog.Warnln("WARNING: SESSION_SECRET is set to the well-known placeholder!")
	}

	if sessionStore != SessionStoreMemory && sessionStore != SessionStoreRedis {
		return nil, errors.New("SESSION_STORE must be either 'memory' or 'redis'")
	}
	redisAddr := getEnv("REDIS_ADDR", "")
	if sessionStore == SessionStoreRedis && redisAddr == "" {
		return nil, errors.New("REDIS_ADDR must be set when SESSION_STORE is 'redis'")
	}

	trustedProxies := splitList(getEnv("TRUSTED_PROXIES", ""))
	for _, entry := range trustedProxies {
		if !validProxyEntry(entry) {
			return nil, fmt.Errorf("TRUSTED_PROXIES entry '%s' is not an IP address or CIDR range", entry)
		}
	}

	sessionHours, err := strconv.Atoi(sessionHoursStr)
	if err != nil || sessionHours <= 0 {
		customLog.Warnf("Invalid SESSION_MAX_AGE_HOURS '%s'. Using default 24h. Error: %v", sessionHoursStr, err)
		sessionHours = 24
	}

	bcryptCost, err := strconv.Atoi(bcryptCostStr)
	if err != nil || bcryptCost < 4 || bcryptCost > 31 {
		customLog.Warnf("Invalid BCRYPT_COST '%s'. Using default 10. Error: %v", bcryptCostStr, err)
		bcryptCost = 10
	}

	loginRate, err := strconv.Atoi(loginRateStr)
	if err != nil || loginRate <= 0 {
		customLog.Warnf("Invalid LOGIN_RATE_PER_MINUTE '%s'. Using default 10. Error: %v", loginRateStr, err)
		loginRate = 10
	}

	cfg := &Config{
		ServerPort:         port,
		Environment:        env,
		ForceHTTPS:         env == "production",
		SessionSecret:      sessionSecret,
		SessionMaxAge:      time.Hour * time.Duration(sessionHours),
		SessionStore:       sessionStore,
		RedisAddr:          redisAddr,
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		DatabaseDir:        dbDir,
		DatabaseFile:       dbFile,
		BcryptCost:         bcryptCost,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		TrustedProxies:     trustedProxies,
		LoginRatePerMinute: loginRate,
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Env: %s, Session store: %s", cfg.ServerPort, cfg.Environment, cfg.SessionStore)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func validProxyEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
