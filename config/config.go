package config

import (
	"fmt"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/jayanthmani8045/hara-tool/pkg/matching"
)

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"hara-api"`
	Port                          int    `env:"PORT" env-default:"3004"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`
	MaxHeaderBytes                int    `env:"HTTP_SERVER_MAX_HEADER_BYTES" env-default:"64000"` // 64KB
	StartupMaxAttempts            int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	// Database configuration
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"hara"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Kafka producer configuration
	KafkaEnabled      bool     `env:"KAFKA_ENABLED" env-default:"false"`
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaRunTopic     string   `env:"KAFKA_RUN_TOPIC" env-default:"hara.run-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Matching engine defaults, overridable per request
	FuzzyEnabled    bool   `env:"FUZZY_ENABLED" env-default:"true"`
	FuzzyThreshold  int    `env:"FUZZY_THRESHOLD" env-default:"80" validate:"min=0,max=100"`
	FuzzyAlgorithm  string `env:"FUZZY_ALGORITHM" env-default:"token-set-ratio"`
	CaseSensitive   bool   `env:"CASE_SENSITIVE" env-default:"false"`
	StripWhitespace bool   `env:"STRIP_WHITESPACE" env-default:"true"`
	OSWeight        int    `env:"OS_WEIGHT" env-default:"70" validate:"min=0"`
	HazardWeight    int    `env:"HAZARD_WEIGHT" env-default:"30" validate:"min=0"`
}

var validate = validator.New()

// EngineSettings converts the configured matching defaults into engine
// settings, validating the algorithm name.
func (c *Config) EngineSettings() (matching.Settings, error) {
	algorithm, err := matching.ParseAlgorithm(c.FuzzyAlgorithm)
	if err != nil {
		return matching.Settings{}, err
	}
	return matching.Settings{
		FuzzyEnabled:    c.FuzzyEnabled,
		Threshold:       c.FuzzyThreshold,
		Algorithm:       algorithm,
		CaseSensitive:   c.CaseSensitive,
		StripWhitespace: c.StripWhitespace,
		PrimaryWeight:   float64(c.OSWeight),
		SecondaryWeight: float64(c.HazardWeight),
	}, nil
}

// Load reads configuration from the environment, after loading a .env file
// when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ectoenv.BindEnv(&cfg); err != nil {
		return nil, fmt.Errorf("binding environment variables: %w", err)
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}
