package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env       string `env:"CAMPUSGATE_ENV, default=dev"` // "dev" | "prod"
	LogLevel  string `env:"CAMPUSGATE_LOG_LEVEL, default=info"`
	LogPretty bool   `env:"CAMPUSGATE_LOG_PRETTY, default=false"`

	HTTP     HTTPConfig
	GRPC     GRPCConfig
	DB       DBConfig
	Auth     AuthConfig
	Dedup    DedupConfig
	RabbitMQ RabbitMQConfig
	Client   ClientConfig
}

type HTTPConfig struct {
	Addr string `env:"CAMPUSGATE_HTTP_ADDR, default=:3001"`
}

// GRPCConfig: an empty Addr disables the station RPC listener.
type GRPCConfig struct {
	Addr string `env:"CAMPUSGATE_GRPC_ADDR"`
}

type DBConfig struct {
	Path    string `env:"CAMPUSGATE_DB_PATH, default=./data/campusgate.db"`
	SeedDev bool   `env:"CAMPUSGATE_SEED_DEV, default=false"`
}

type AuthConfig struct {
	JWTSecret string        `env:"CAMPUSGATE_JWT_SECRET"`
	TokenTTL  time.Duration `env:"CAMPUSGATE_TOKEN_TTL, default=24h"`
	Enforce   bool          `env:"CAMPUSGATE_AUTH_ENFORCE, default=true"`
}

// DedupConfig controls the server-side duplicate scan guard. A zero Window
// disables it; an empty RedisAddr keeps the guard in process memory.
type DedupConfig struct {
	Window        time.Duration `env:"CAMPUSGATE_DEDUP_WINDOW, default=2s"`
	SweepInterval time.Duration `env:"CAMPUSGATE_DEDUP_SWEEP_INTERVAL, default=1m"`
	RedisAddr     string        `env:"CAMPUSGATE_REDIS_ADDR"`
	RedisDB       int           `env:"CAMPUSGATE_REDIS_DB, default=0"`
}

type RabbitMQConfig struct {
	URL          string `env:"CAMPUSGATE_RABBITMQ_URL"`
	Queue        string `env:"CAMPUSGATE_RABBITMQ_QUEUE, default=access.recorded"`
	QueueDurable bool   `env:"CAMPUSGATE_RABBITMQ_DURABLE, default=true"`
}

// ClientConfig is read by the station and member commands.
type ClientConfig struct {
	APIBaseURL     string        `env:"CAMPUSGATE_API_URL, default=http://localhost:3001/api"`
	SessionPath    string        `env:"CAMPUSGATE_SESSION_PATH"`
	StationID      string        `env:"CAMPUSGATE_STATION_ID"`
	RequestTimeout time.Duration `env:"CAMPUSGATE_REQUEST_TIMEOUT, default=15s"`
}

// Load reads configuration from the environment. In dev, a local .env file
// is loaded first when present.
func Load(ctx context.Context) (Config, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("CAMPUSGATE_ENV")))
	if env == "" || env == "dev" {
		_ = godotenv.Load()
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	if cfg.Env != "dev" && cfg.Env != "prod" {
		// fail-soft: treat unknown as dev
		cfg.Env = "dev"
	}
	if cfg.Dedup.Window < 0 {
		cfg.Dedup.Window = 0
	}
	cfg.Client.APIBaseURL = strings.TrimRight(cfg.Client.APIBaseURL, "/")

	return cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("config: CAMPUSGATE_JWT_SECRET is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("config: CAMPUSGATE_TOKEN_TTL must be positive")
	}
	return nil
}
