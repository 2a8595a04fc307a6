package publisher

import (
	"context"

	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"go.uber.org/zap"
)

// KafkaSink writes each record line as a message keyed by symbol, so the
// records of one book stay ordered within a partition. The record type code
// travels in the "type" header.
type KafkaSink struct {
	producer *kafkawrapper.Producer
	logger   *zap.Logger
}

func NewKafkaSink(producer *kafkawrapper.Producer, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaSink{producer: producer, logger: logger}
}

func (s *KafkaSink) publish(recordType, symbol string, line []byte) {
	err := s.producer.Publish(context.Background(), []byte(symbol), line, map[string]string{"type": recordType})
	if err != nil {
		s.logger.Error("kafka publish failed", zap.String("type", recordType), zap.String("symbol", symbol), zap.Error(err))
	}
}

func (s *KafkaSink) PublishAck(a orderbook.Ack) {
	s.publish(TypeAck, a.Symbol, AppendAck(nil, a))
}

func (s *KafkaSink) PublishTrade(t orderbook.Trade) {
	s.publish(TypeTrade, t.Symbol, AppendTrade(nil, t))
}

func (s *KafkaSink) PublishTopOfBook(t orderbook.TopOfBook) {
	s.publish(TypeTopOfBook, t.Symbol, AppendTopOfBook(nil, t))
}

// Flush is a no-op; the writer batches on its own.
func (s *KafkaSink) Flush(ctx context.Context) error {
	return nil
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
