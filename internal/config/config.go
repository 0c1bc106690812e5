package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/coreforge/bnetrest/internal/models"
)

type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Login     LoginConfig
	WrongPass WrongPassConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port             string
	Env              string
	LogLevel         string
	TrustedProxies   []string
	BanSweepInterval time.Duration
}

// LoginConfig drives the login REST surface: the two advertised hostnames,
// ticket validity, and the portal port reported on GET /portal/.
type LoginConfig struct {
	ExternalAddress string
	LocalAddress    string
	TicketDuration  time.Duration
	PortalPort      int
}

// WrongPassConfig drives the failed-login/auto-ban state machine. MaxCount 0
// disables the whole mechanism, counter increments included.
type WrongPassConfig struct {
	Logging  bool
	MaxCount uint32
	BanMode  models.BanMode
	BanTime  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "bnetrest"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:             getEnv("PORT", "8081"),
			Env:              getEnv("ENV", "development"),
			LogLevel:         getEnv("LOG_LEVEL", "info"),
			TrustedProxies:   getEnvAsSlice("TRUSTED_PROXIES"),
			BanSweepInterval: getEnvAsDuration("BAN_SWEEP_INTERVAL", 15*time.Minute),
		},
		Login: LoginConfig{
			ExternalAddress: getEnv("LOGIN_REST_EXTERNAL_ADDRESS", "127.0.0.1"),
			LocalAddress:    getEnv("LOGIN_REST_LOCAL_ADDRESS", "127.0.0.1"),
			TicketDuration:  time.Duration(getEnvAsInt("LOGIN_TICKET_DURATION", 3600)) * time.Second,
			PortalPort:      getEnvAsInt("PORTAL_PORT", 1119),
		},
		WrongPass: WrongPassConfig{
			Logging:  getEnvAsBool("WRONG_PASS_LOGGING", false),
			MaxCount: uint32(getEnvAsInt("WRONG_PASS_MAX_COUNT", 0)),
			BanMode:  parseBanMode(getEnv("WRONG_PASS_BAN_TYPE", string(models.BanModeIP))),
			BanTime:  time.Duration(getEnvAsInt("WRONG_PASS_BAN_TIME", 600)) * time.Second,
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if cfg.Login.TicketDuration <= 0 {
		return nil, fmt.Errorf("LOGIN_TICKET_DURATION must be positive")
	}

	return cfg, nil
}

// parseBanMode falls back to IP bans for unknown selectors.
func parseBanMode(value string) models.BanMode {
	if models.BanMode(value) == models.BanModeAccount {
		return models.BanModeAccount
	}
	return models.BanModeIP
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
