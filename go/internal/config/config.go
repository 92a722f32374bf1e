package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/mcdev12/scorekeeper/go/internal/matchsync"
	"github.com/mcdev12/scorekeeper/go/internal/models"
	"github.com/mcdev12/scorekeeper/go/internal/notify"
)

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Log       LogConfig        `yaml:"log"`
	Sports    SportsConfig     `yaml:"sports"`
	Sync      matchsync.Config `yaml:"sync"`
	NATS      NATSConfig       `yaml:"nats"`
	RabbitMQ  RabbitMQConfig   `yaml:"rabbitmq"`
	Postgres  PostgresConfig   `yaml:"postgres"`
	Firestore FirestoreConfig  `yaml:"firestore"`
	Hub       notify.Config    `yaml:"hub"`
	Rosters   RostersConfig    `yaml:"rosters"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type SportsConfig struct {
	EnabledPlugins []string `yaml:"enabled_plugins"`
}

type NATSConfig struct {
	Enabled                   bool `yaml:"enabled"`
	matchsync.JetStreamConfig `yaml:",inline"`
}

type RabbitMQConfig struct {
	Enabled                  bool `yaml:"enabled"`
	matchsync.RabbitMQConfig `yaml:",inline"`
}

// PostgresConfig holds Postgres connection settings. The store is used when
// Enabled is set.
type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

// DSN returns the Postgres connection URL.
func (c PostgresConfig) DSN() string {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
	if c.MaxConns > 0 {
		dsn += fmt.Sprintf("&pool_max_conns=%d", c.MaxConns)
	}
	return dsn
}

type FirestoreConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"-"`
}

// RostersConfig points at the HTTP service team sheets are fetched from
// when a match is created without lineups.
type RostersConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"-"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Pretty: true},
		Sports: SportsConfig{
			EnabledPlugins: []string{string(models.SportCricket), string(models.SportFootball)},
		},
		Sync:     matchsync.DefaultConfig(),
		NATS:     NATSConfig{JetStreamConfig: matchsync.DefaultJetStreamConfig()},
		RabbitMQ: RabbitMQConfig{RabbitMQConfig: matchsync.DefaultRabbitMQConfig()},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Password: "postgres",
			Database: "scorekeeper",
			SSLMode:  "disable",
		},
		Hub:     notify.DefaultConfig(),
		Rosters: RostersConfig{Timeout: 30 * time.Second},
	}
}

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then applies environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.Server.AllowedOrigins = splitList(origins)
	}
	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Pretty = getEnvAsBool("LOG_PRETTY", cfg.Log.Pretty)
	if sports := os.Getenv("ENABLED_SPORTS"); sports != "" {
		cfg.Sports.EnabledPlugins = splitList(sports)
	}

	cfg.NATS.Enabled = getEnvAsBool("NATS_ENABLED", cfg.NATS.Enabled)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", cfg.RabbitMQ.Enabled)
	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)

	cfg.Postgres.Enabled = getEnvAsBool("DB_ENABLED", cfg.Postgres.Enabled)
	cfg.Postgres.Host = getEnv("DB_HOST", cfg.Postgres.Host)
	cfg.Postgres.Port = getEnvAsInt("DB_PORT", cfg.Postgres.Port)
	cfg.Postgres.User = getEnv("DB_USER", cfg.Postgres.User)
	cfg.Postgres.Password = getEnv("DB_PASSWORD", cfg.Postgres.Password)
	cfg.Postgres.Database = getEnv("DB_NAME", cfg.Postgres.Database)
	cfg.Postgres.SSLMode = getEnv("DB_SSLMODE", cfg.Postgres.SSLMode)

	cfg.Firestore.Enabled = getEnvAsBool("FIRESTORE_ENABLED", cfg.Firestore.Enabled)
	cfg.Firestore.ProjectID = getEnv("FIRESTORE_PROJECT_ID", cfg.Firestore.ProjectID)
	cfg.Firestore.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.Firestore.CredentialsFile)
	cfg.Firestore.CredentialsJSON = getEnv("FIREBASE_CREDENTIALS_JSON", cfg.Firestore.CredentialsJSON)

	cfg.Rosters.BaseURL = getEnv("ROSTERS_API_URL", cfg.Rosters.BaseURL)
	cfg.Rosters.APIKey = getEnv("ROSTERS_API_KEY", cfg.Rosters.APIKey)
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	if len(c.Sports.EnabledPlugins) == 0 {
		return errors.New("at least one sport must be enabled")
	}
	for _, sport := range c.Sports.EnabledPlugins {
		switch models.Sport(sport) {
		case models.SportCricket, models.SportFootball:
		default:
			return fmt.Errorf("unknown sport %q in enabled_plugins", sport)
		}
	}
	if c.Firestore.Enabled && c.Firestore.ProjectID == "" {
		return errors.New("firestore project_id is required when firestore is enabled")
	}
	if c.Sync.MaxRetries < 0 {
		return errors.New("sync max_retries cannot be negative")
	}
	return nil
}

// LogLevel parses the configured level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// EnabledSports returns the enabled sports.
func (c *Config) EnabledSports() []models.Sport {
	sports := make([]models.Sport, 0, len(c.Sports.EnabledPlugins))
	for _, s := range c.Sports.EnabledPlugins {
		sports = append(sports, models.Sport(s))
	}
	return sports
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
