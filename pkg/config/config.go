package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`

	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`

	Monitor struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"monitor"`

	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"trendlab"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		MaxOpenConns     int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns     int           `yaml:"max_idle_conns" default:"5"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`

	Redis struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Host     string        `yaml:"host" default:"localhost"`
		Port     int           `yaml:"port" default:"6379"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db" default:"0"`
		Prefix   string        `yaml:"prefix" default:"trendlab"`
		LockTTL  time.Duration `yaml:"lock_ttl" default:"30m"`
	} `yaml:"redis"`

	Kafka struct {
		Brokers     []string `yaml:"brokers"`
		BarsTopic   string   `yaml:"bars_topic" default:"trendlab.bars"`
		DLQTopic    string   `yaml:"dlq_topic" default:"trendlab.bars.dlq"`
		Compression string   `yaml:"compression" default:"gzip"`
		Consumer    struct {
			GroupID    string        `yaml:"group_id" default:"trendlab-ingest"`
			Workers    int           `yaml:"workers" default:"4"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"50ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"2s"`
		} `yaml:"consumer"`
		Producer struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"producer"`
	} `yaml:"kafka"`

	Artifact struct {
		Dir  string `yaml:"dir" default:"./artifacts"`
		Name string `yaml:"name" default:"model.json"`
	} `yaml:"artifact"`

	Pipeline struct {
		Indicators    []string      `yaml:"indicators" default:"[\"sma_10\",\"ema_20\",\"rsi_14\",\"macd\"]" validate:"min=1"`
		TrainFraction float64       `yaml:"train_fraction" default:"0.75" validate:"gt=0,lt=1"`
		CVFolds       int           `yaml:"cv_folds" default:"3" validate:"gte=2"`
		Scoring       string        `yaml:"scoring" default:"precision" validate:"oneof=precision recall f1 accuracy"`
		Threshold     float64       `yaml:"threshold" default:"0.5" validate:"gt=0,lt=1"`
		Workers       int           `yaml:"workers" default:"4" validate:"gte=1"`
		Seed          int64         `yaml:"seed" default:"42"`
		ReportTTL     time.Duration `yaml:"report_ttl" default:"168h"`
		Grid          struct {
			LearningRates []float64 `yaml:"learning_rates" default:"[0.01,0.1]" validate:"min=1"`
			MaxDepths     []int     `yaml:"max_depths" default:"[3,5,7]" validate:"min=1"`
			Estimators    []int     `yaml:"estimators" default:"[500,1000]" validate:"min=1"`
			Subsamples    []float64 `yaml:"subsamples" default:"[0.7,0.8]" validate:"min=1"`
		} `yaml:"grid"`
	} `yaml:"pipeline"`
}

// Load reads a YAML configuration file, fills in defaults for anything
// left unset, and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := validator.New().Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ARTIFACT_DIR"); v != "" {
		c.Artifact.Dir = v
	}
	return c, nil
}
