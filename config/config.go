package config

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int
	Env  string

	DatabaseType string
	DatabaseURL  string
	DBLogLevel   string
	DBMaxPool    int

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	Cookie Environment

	CORSOrigins    []string
	RequestTimeout time.Duration

	// report reference-count drift and exit instead of serving
	Audit bool
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from, in increasing priority: defaults, a .env file
// (outside production), the environment, and command-line flags.
func Load(args []string) (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn(".env file could not be loaded", "error", err)
		}
	}

	var cfg Config

	fs := flag.NewFlagSet("cardbox-api", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (postgres, mysql or sqlite)")
	fs.BoolVar(&cfg.Audit, "audit", false, "Check card reference counts and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Env = getenv("APP_ENV", "development")

	if cfg.Port == 0 {
		portStr := getenv("PORT", "8080")
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = getenv("DATABASE_TYPE", "sqlite")
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	switch cfg.DatabaseType {
	case "postgres", "mysql", "sqlite":
	default:
		return Config{}, errors.New("DATABASE_TYPE must be postgres, mysql or sqlite")
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DB_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType != "sqlite" {
			return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = "cardbox.db"
	}

	cfg.DBLogLevel = strings.ToLower(getenv("DB_LOG_LEVEL", "warn"))
	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, errors.New("invalid DB_MAX_POOL env variable")
		}
		cfg.DBMaxPool = size
	} else {
		cfg.DBMaxPool = 25
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET_KEY")
	if cfg.JWTSecret == "" && !cfg.Audit {
		return Config{}, errors.New("JWT_SECRET_KEY required")
	}
	cfg.JWTIssuer = getenv("JWT_ISSUER", "cardbox-api")
	cfg.JWTAudience = getenv("JWT_AUDIENCE", "cardbox-web")

	cfg.TokenTTL = 12 * time.Hour
	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.New("invalid JWT_EXPIRATION env variable")
		}
		cfg.TokenTTL = d
	}

	cfg.Cookie = loadEnvironment()

	cfg.CORSOrigins = splitList(getenv("CORS_ORIGINS", "http://localhost:5173"))

	cfg.RequestTimeout = 15 * time.Second
	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.New("invalid REQUEST_TIMEOUT env variable")
		}
		cfg.RequestTimeout = d
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		if v := strings.TrimRight(strings.TrimSpace(p), "/"); v != "" {
			out = append(out, v)
		}
	}
	return out
}
