// Package config loads and validates application configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// subsystem (Server, Index, Ranking, Store, Postgres, Redis, Kafka, etc.).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Ranking   RankingConfig   `yaml:"ranking"`
	Search    SearchConfig    `yaml:"search"`
	Store     StoreConfig     `yaml:"store"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// IndexConfig locates the two segment files and the synonym table, and picks
// the analyzer shared by the content indexer and the keyword ranker.
type IndexConfig struct {
	DataDir           string `yaml:"dataDir"`
	IngredientSegment string `yaml:"ingredientSegment"`
	ContentSegment    string `yaml:"contentSegment"`
	SynonymsPath      string `yaml:"synonymsPath"`
	Analyzer          string `yaml:"analyzer"`
	BuildWorkers      int    `yaml:"buildWorkers"`
}

// RankingConfig holds the tunables of the ranking pipeline. The BM25
// constants k1 and b are fixed and deliberately absent.
type RankingConfig struct {
	CoverageGain    float64 `yaml:"coverageGain"`
	Synonyms        int     `yaml:"synonyms"`
	OverfetchFactor int     `yaml:"overfetchFactor"`
	DefaultMode     string  `yaml:"defaultMode"`
}

// SearchConfig controls result-size limits of the upward API.
type SearchConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
	MaxResults   int `yaml:"maxResults"`
}

// StoreConfig selects the recipe store backend: none, memory, sqlite,
// postgres or redis.
type StoreConfig struct {
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlitePath"`
	Table       string `yaml:"table"`
	RedisPrefix string `yaml:"redisPrefix"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	Database        string        `yaml:"database"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	SSLMode         string        `yaml:"sslMode"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// DSN returns a lib/pq-compatible data source name.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"poolSize"`
}

// KafkaConfig holds Kafka broker and topic settings.
type KafkaConfig struct {
	Brokers []string    `yaml:"brokers"`
	Topics  KafkaTopics `yaml:"topics"`
}

// KafkaTopics maps logical topic names to their Kafka topic strings.
type KafkaTopics struct {
	SearchEvents string `yaml:"searchEvents"`
}

// AnalyticsConfig toggles the search-event collector.
type AnalyticsConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"bufferSize"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a validated Config populated with defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with defaults suitable for local development.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Index: IndexConfig{
			DataDir:           "indexes",
			IngredientSegment: "ingredients.rsx",
			ContentSegment:    "content.rsx",
			SynonymsPath:      "files/other/synonyms.json",
			Analyzer:          "english",
			BuildWorkers:      4,
		},
		Ranking: RankingConfig{
			CoverageGain:    1.0,
			Synonyms:        5,
			OverfetchFactor: 10,
			DefaultMode:     "simple",
		},
		Search: SearchConfig{
			DefaultLimit: 10,
			MaxResults:   1000,
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			SQLitePath:  "files/recipes.db",
			Table:       "recipes",
			RedisPrefix: "recipe:",
		},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            5432,
			Database:        "recipes",
			User:            "recipes",
			Password:        "localdev",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Kafka: KafkaConfig{
			Brokers: []string{"localhost:9092"},
			Topics: KafkaTopics{
				SearchEvents: "recipe-search-events",
			},
		},
		Analytics: AnalyticsConfig{
			Enabled:    false,
			BufferSize: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

// Validate rejects configurations the ranking pipeline cannot honour.
func (c *Config) Validate() error {
	if c.Ranking.CoverageGain < 0 {
		return fmt.Errorf("ranking.coverageGain must be >= 0, got %v", c.Ranking.CoverageGain)
	}
	if c.Ranking.Synonyms < 0 {
		return fmt.Errorf("ranking.synonyms must be >= 0, got %d", c.Ranking.Synonyms)
	}
	if c.Ranking.OverfetchFactor < 1 {
		return fmt.Errorf("ranking.overfetchFactor must be >= 1, got %d", c.Ranking.OverfetchFactor)
	}
	switch c.Ranking.DefaultMode {
	case "simple", "rrf":
	default:
		return fmt.Errorf("ranking.defaultMode must be simple or rrf, got %q", c.Ranking.DefaultMode)
	}
	if c.Search.DefaultLimit < 1 || c.Search.MaxResults < c.Search.DefaultLimit {
		return fmt.Errorf("search limits invalid: default=%d max=%d", c.Search.DefaultLimit, c.Search.MaxResults)
	}
	switch c.Store.Backend {
	case "none", "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("store.backend %q not supported", c.Store.Backend)
	}
	switch c.Index.Analyzer {
	case "english", "simple":
	default:
		return fmt.Errorf("index.analyzer %q not supported", c.Index.Analyzer)
	}
	return nil
}

// applyEnvOverrides reads RS_* environment variables and overrides the
// corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RS_INDEX_DATA_DIR"); v != "" {
		cfg.Index.DataDir = v
	}
	if v := os.Getenv("RS_INDEX_SYNONYMS_PATH"); v != "" {
		cfg.Index.SynonymsPath = v
	}
	if v := os.Getenv("RS_RANKING_COVERAGE_GAIN"); v != "" {
		if gain, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ranking.CoverageGain = gain
		}
	}
	if v := os.Getenv("RS_RANKING_DEFAULT_MODE"); v != "" {
		cfg.Ranking.DefaultMode = v
	}
	if v := os.Getenv("RS_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("RS_STORE_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("RS_POSTGRES_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("RS_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = port
		}
	}
	if v := os.Getenv("RS_POSTGRES_DATABASE"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("RS_POSTGRES_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("RS_POSTGRES_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if v := os.Getenv("RS_POSTGRES_SSLMODE"); v != "" {
		cfg.Postgres.SSLMode = v
	}
	if v := os.Getenv("RS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("RS_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("RS_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("RS_ANALYTICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Analytics.Enabled = enabled
		}
	}
	if v := os.Getenv("RS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RS_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
