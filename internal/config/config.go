package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	Redis             Redis  `yaml:"redis"`
	SQLiteStoragePath string `yaml:"sqlite-storage-path" env:"SQLITE_PATH" env-default:"./master.db"`
	JWTSecretKey      string `yaml:"jwt-secret-key" env:"JWT_SECRET_KEY" env-default:"my_super_secret_key"`
	Otel              Otel   `yaml:"otel"`
	Game              Game   `yaml:"game"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Otel struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_ENDPOINT" env-default:"otel-collector:4317"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"knn-tic-tac-toe"`
}

type Game struct {
	// Neighbors is the number of examples consulted by the k-NN fallback.
	Neighbors  int           `yaml:"neighbors" env:"GAME_NEIGHBORS" env-default:"3"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"GAME_SESSION_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file, or from the environment when path is empty.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Load reads the configuration file at path. Environment variables override file values.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if path == "" {
		err = cleanenv.ReadEnv(config)
	} else {
		err = cleanenv.ReadConfig(path, config)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Game.Neighbors < 1 {
		return nil, fmt.Errorf("game.neighbors must be positive, got %d", config.Game.Neighbors)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// SlogLevel maps the configured log level to a slog level.
func (that *Config) SlogLevel() slog.Level {
	switch strings.ToLower(that.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
