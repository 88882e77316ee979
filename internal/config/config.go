package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	MinSecretLength = 16
)

type Config struct {
	// Server
	Host string
	Port int

	// Auth
	Secret          string
	CredentialsPath string

	// Database
	DBDriver    string // sqlite/postgres
	DBPath      string
	PostgresDSN string
	RedisURL    string // optional

	// Integrations
	Adapters []string

	// Proposals
	ProposalTTL    time.Duration
	ExpireInterval time.Duration
	ActionTimeout  time.Duration

	// Rate limit, requests per minute per ip
	RateLimit int

	// Notify bridge webhook
	NotifyURL string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Host: getEnv("FRUITCTL_HOST", "0.0.0.0"),
		Port: getEnvInt("FRUITCTL_PORT", 3456),

		CredentialsPath: getEnv("FRUITCTL_CREDENTIALS", DefaultCredentialsPath()),

		DBDriver:    getEnv("FRUITCTL_DB_DRIVER", DriverSQLite),
		DBPath:      getEnv("FRUITCTL_DB_PATH", "./fruitctl.db"),
		PostgresDSN: getEnv("FRUITCTL_POSTGRES_DSN", ""),
		RedisURL:    getEnv("FRUITCTL_REDIS_URL", ""),

		Adapters: parseList(getEnv("FRUITCTL_ADAPTERS", "reminders,calendar")),

		ProposalTTL:    getEnvDuration("FRUITCTL_PROPOSAL_TTL", 24*time.Hour),
		ExpireInterval: getEnvDuration("FRUITCTL_EXPIRE_INTERVAL", 5*time.Minute),
		ActionTimeout:  getEnvDuration("FRUITCTL_ACTION_TIMEOUT", 30*time.Second),

		RateLimit: getEnvInt("FRUITCTL_RATE_LIMIT", 100),

		NotifyURL: getEnv("FRUITCTL_NOTIFY_URL", ""),
	}

	cfg.Secret = os.Getenv("FRUITCTL_SECRET")
	if cfg.Secret == "" {
		cfg.Secret = secretFromCredentials(cfg.CredentialsPath)
	}

	return cfg
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *Config) AdapterEnabled(name string) bool {
	for _, a := range c.Adapters {
		if a == name {
			return true
		}
	}
	return false
}

func (c *Config) Validate(log *zap.Logger) error {
	if c.Secret == "" {
		return errors.New("FRUITCTL_SECRET is not set and no server credentials were found")
	}
	if len(c.Secret) < MinSecretLength {
		return fmt.Errorf("secret must be at least %d characters", MinSecretLength)
	}
	switch c.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("FRUITCTL_POSTGRES_DSN is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.DBDriver)
	}
	if c.ExpireInterval <= 0 {
		return errors.New("FRUITCTL_EXPIRE_INTERVAL must be positive")
	}
	if c.RateLimit <= 0 {
		return errors.New("FRUITCTL_RATE_LIMIT must be positive")
	}
	if c.RedisURL == "" {
		log.Warn("FRUITCTL_REDIS_URL is not set, events and websocket stream disabled")
	}
	if len(c.Adapters) == 0 {
		log.Warn("no adapters enabled")
	}
	return nil
}

// DefaultCredentialsPath is where the CLI stores credentials.
func DefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "fruitctl", "credentials.json")
	}
	return filepath.Join(home, ".config", "fruitctl", "credentials.json")
}

// secretFromCredentials reads the shared secret from a server-mode credentials file.
// The file is JSON, which the YAML parser accepts.
func secretFromCredentials(path string) string {
	if path == "" {
		return ""
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return ""
	}
	if k.String("mode") != "server" {
		return ""
	}
	return k.String("secret")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := time.ParseDuration(s)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
