package publisher

import (
	"context"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisSinkConfig struct {
	Channel string `yaml:"channel"`
	// MaxPending forces a flush once this many lines are buffered.
	MaxPending int `yaml:"max_pending"`
}

// RedisSink publishes each record line on a pub/sub channel. Lines are
// buffered and sent in one pipeline per flush.
type RedisSink struct {
	client  redis.Cmdable
	closer  func() error
	cfg     RedisSinkConfig
	pending []string
	logger  *zap.Logger
}

func NewRedisSink(client *redis.Client, cfg RedisSinkConfig, logger *zap.Logger) *RedisSink {
	if cfg.Channel == "" {
		cfg.Channel = "matching-engine.records"
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = 1024
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisSink{
		client:  client,
		closer:  client.Close,
		cfg:     cfg,
		pending: make([]string, 0, cfg.MaxPending),
		logger:  logger,
	}
}

func (s *RedisSink) add(line string) {
	s.pending = append(s.pending, line)
	if len(s.pending) >= s.cfg.MaxPending {
		if err := s.Flush(context.Background()); err != nil {
			s.logger.Error("redis publish failed", zap.String("channel", s.cfg.Channel), zap.Error(err))
		}
	}
}

func (s *RedisSink) PublishAck(a orderbook.Ack)             { s.add(FormatAck(a)) }
func (s *RedisSink) PublishTrade(t orderbook.Trade)         { s.add(FormatTrade(t)) }
func (s *RedisSink) PublishTopOfBook(t orderbook.TopOfBook) { s.add(FormatTopOfBook(t)) }

func (s *RedisSink) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	lines := s.pending
	s.pending = s.pending[:0]

	_, err := s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, line := range lines {
			pipe.Publish(ctx, s.cfg.Channel, line)
		}
		return nil
	})
	return err
}

func (s *RedisSink) Close() error {
	err := s.Flush(context.Background())
	if cerr := s.closer(); err == nil {
		err = cerr
	}
	return err
}
