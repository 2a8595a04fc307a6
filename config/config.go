package config

import (
	"fmt"
	"os"
	"time"

	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/publisher"
	"github.com/joripage/matching-engine/pkg/ringqueue"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const DefaultQueueCapacity = 65535

type AppConfig struct {
	ServiceName string       `yaml:"service_name"`
	LogLevel    string       `yaml:"log_level"`
	Engine      EngineConfig `yaml:"engine"`
	Input       InputConfig  `yaml:"input"`
	Sinks       SinksConfig  `yaml:"sinks"`
}

type EngineConfig struct {
	// LevelsPerBook is the fixed level pool size of each symbol's book.
	LevelsPerBook   int                     `yaml:"levels_per_book"`
	QueueCapacity   int                     `yaml:"queue_capacity"`
	ProducerBackoff ringqueue.BackoffConfig `yaml:"producer_backoff"`
	ConsumerBackoff ringqueue.BackoffConfig `yaml:"consumer_backoff"`
}

type InputConfig struct {
	// File is read line by line; "-" or empty means stdin.
	File  string                       `yaml:"file"`
	Kafka *kafkawrapper.ConsumerConfig `yaml:"kafka"`
}

type SinksConfig struct {
	Stdout bool                         `yaml:"stdout"`
	File   string                       `yaml:"file"`
	Stats  bool                         `yaml:"stats"`
	Redis  *RedisSinkConfig             `yaml:"redis"`
	Kafka  *kafkawrapper.ProducerConfig `yaml:"kafka"`
}

type RedisSinkConfig struct {
	Conn                      *redis_wrapper.RedisConfig `yaml:"conn"`
	publisher.RedisSinkConfig `yaml:",inline"`
}

// Default returns the configuration used when no file is given.
func Default() *AppConfig {
	cfg := &AppConfig{
		ServiceName: "matching-engine",
		Sinks:       SinksConfig{Stdout: true},
	}
	cfg.applyDefaults()
	return cfg
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	e := &cfg.Engine
	if e.LevelsPerBook <= 0 {
		e.LevelsPerBook = orderbook.DefaultLevelsPerBook
	}
	if e.QueueCapacity <= 0 {
		e.QueueCapacity = DefaultQueueCapacity
	}
	if e.ProducerBackoff == (ringqueue.BackoffConfig{}) {
		e.ProducerBackoff = ringqueue.BackoffConfig{
			InitialInterval: time.Microsecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      2,
			MaxElapsedTime:  5 * time.Second,
		}
	}
	if e.ConsumerBackoff == (ringqueue.BackoffConfig{}) {
		e.ConsumerBackoff = ringqueue.BackoffConfig{
			InitialInterval: time.Microsecond,
			MaxInterval:     500 * time.Microsecond,
			Multiplier:      2,
		}
	}
}

// Validate rejects configurations the engine cannot run with.
func (cfg *AppConfig) Validate() error {
	if cfg.Sinks.Redis != nil && (cfg.Sinks.Redis.Conn == nil || cfg.Sinks.Redis.Conn.ConnectionURL == "") {
		return fmt.Errorf("sinks.redis.conn.connection_url is required")
	}
	if cfg.Sinks.Kafka != nil && (len(cfg.Sinks.Kafka.Brokers) == 0 || cfg.Sinks.Kafka.Topic == "") {
		return fmt.Errorf("sinks.kafka needs brokers and a topic")
	}
	if cfg.Input.Kafka != nil && cfg.Input.File != "" {
		return fmt.Errorf("input.file and input.kafka are exclusive")
	}
	return nil
}

// Load load config from file and environment variables.
func Load(filePath string) (*AppConfig, error) {
	if len(filePath) == 0 {
		filePath = os.Getenv("CONFIG_FILE")
	}
	if len(filePath) == 0 {
		zap.S().Debug("no config file, using defaults")
		return Default(), nil
	}

	fields := []interface{}{
		"func",
		"config.readFromFile",
		"filePath",
		filePath,
	}

	sugar := zap.S().With(fields...)

	sugar.Debug("Load config...")

	configBytes, err := os.ReadFile(filePath)
	if err != nil {
		sugar.Error("Failed to load config file")
		return nil, err
	}
	configBytes = []byte(os.ExpandEnv(string(configBytes)))

	cfg := &AppConfig{}

	err = yaml.Unmarshal(configBytes, cfg)
	if err != nil {
		sugar.Error("Failed to parse config file")
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		sugar.Error("Invalid config")
		return nil, err
	}

	zap.S().Debugf("config: %+v", cfg)

	return cfg, nil
}
