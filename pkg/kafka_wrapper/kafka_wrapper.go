// Package kafkawrapper publishes engine output records to Kafka and reads
// order input lines from a Kafka topic.
package kafkawrapper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff"
	kafka "github.com/segmentio/kafka-go"
)

type ProducerConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	BatchSize    int           `yaml:"batch_size"`
	BatchBytes   int64         `yaml:"batch_bytes"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
	// Sync waits for each write instead of batching in the background.
	Sync     bool           `yaml:"sync"`
	Balancer kafka.Balancer `yaml:"-"`
}

type Producer struct {
	w *kafka.Writer
}

func NewProducer(cfg ProducerConfig) *Producer {
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.Hash{}
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchBytes == 0 {
		cfg.BatchBytes = 1 << 20
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 50 * time.Millisecond
	}
	wr := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               cfg.Balancer,
		BatchSize:              cfg.BatchSize,
		BatchBytes:             cfg.BatchBytes,
		BatchTimeout:           cfg.BatchTimeout,
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
		Async:                  !cfg.Sync,
	}
	return &Producer{w: wr}
}

// Publish writes one message to the producer's topic. Messages with the same
// key land on the same partition, so per-key order is kept.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers map[string]string) error {
	if p == nil || p.w == nil {
		return errors.New("producer not initialized")
	}
	var kh []kafka.Header
	for k, v := range headers {
		kh = append(kh, kafka.Header{Key: k, Value: []byte(v)})
	}
	return p.w.WriteMessages(ctx, kafka.Message{
		Key:     key,
		Value:   value,
		Headers: kh,
		Time:    time.Now(),
	})
}

func (p *Producer) Close() error {
	if p == nil || p.w == nil {
		return nil
	}
	return p.w.Close()
}

type ConsumerConfig struct {
	Brokers    []string      `yaml:"brokers"`
	GroupID    string        `yaml:"group_id"`
	Topic      string        `yaml:"topic"`
	MaxWait    time.Duration `yaml:"max_wait"`
	BackoffMin time.Duration `yaml:"backoff_min"`
	BackoffMax time.Duration `yaml:"backoff_max"`
	// MaxElapsed bounds how long fetch errors are retried; zero retries forever.
	MaxElapsed time.Duration `yaml:"max_elapsed"`
}

// LineConsumer reads one message at a time from a topic and hands its value
// out as an input line. Offsets are committed as soon as a message is read.
type LineConsumer struct {
	r   *kafka.Reader
	cfg ConsumerConfig
}

func NewLineConsumer(cfg ConsumerConfig) (*LineConsumer, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka consumer needs brokers and a topic")
	}
	if cfg.MaxWait == 0 {
		cfg.MaxWait = 500 * time.Millisecond
	}
	if cfg.BackoffMin == 0 {
		cfg.BackoffMin = 100 * time.Millisecond
	}
	if cfg.BackoffMax == 0 {
		cfg.BackoffMax = 10 * time.Second
	}

	rd := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MaxWait:     cfg.MaxWait,
		MinBytes:    1,
		MaxBytes:    10 << 20,
	})
	return &LineConsumer{r: rd, cfg: cfg}, nil
}

// ReadLine blocks until the next message arrives, retrying fetch errors. The
// error wraps io.EOF once the consumer is closed.
func (c *LineConsumer) ReadLine(ctx context.Context) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.BackoffMin
	b.MaxInterval = c.cfg.BackoffMax
	b.MaxElapsedTime = c.cfg.MaxElapsed
	b.Reset()

	var m kafka.Message
	err := backoff.Retry(func() error {
		var err error
		if m, err = c.r.FetchMessage(ctx); err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		return nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return "", fmt.Errorf("fetch message: %w", err)
	}

	if c.cfg.GroupID != "" {
		if err := c.r.CommitMessages(ctx, m); err != nil {
			return "", fmt.Errorf("commit offset %d: %w", m.Offset, err)
		}
	}
	return string(m.Value), nil
}

func (c *LineConsumer) Close() error {
	if c == nil || c.r == nil {
		return nil
	}
	return c.r.Close()
}
