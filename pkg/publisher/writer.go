package publisher

import (
	"bufio"
	"context"
	"io"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"go.uber.org/zap"
)

// WriterSink writes one text line per record to an io.Writer.
type WriterSink struct {
	w      *bufio.Writer
	closer io.Closer
	buf    []byte
	logger *zap.Logger
}

// NewWriterSink wraps w. If w is also an io.Closer it is closed by Close.
func NewWriterSink(w io.Writer, logger *zap.Logger) *WriterSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &WriterSink{
		w:      bufio.NewWriterSize(w, 64<<10),
		buf:    make([]byte, 0, 64),
		logger: logger,
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *WriterSink) writeLine(b []byte) {
	b = append(b, '\n')
	if _, err := s.w.Write(b); err != nil {
		s.logger.Error("write record failed", zap.Error(err))
	}
	s.buf = b[:0]
}

func (s *WriterSink) PublishAck(a orderbook.Ack) {
	s.writeLine(AppendAck(s.buf[:0], a))
}

func (s *WriterSink) PublishTrade(t orderbook.Trade) {
	s.writeLine(AppendTrade(s.buf[:0], t))
}

func (s *WriterSink) PublishTopOfBook(t orderbook.TopOfBook) {
	s.writeLine(AppendTopOfBook(s.buf[:0], t))
}

func (s *WriterSink) Flush(ctx context.Context) error {
	return s.w.Flush()
}

func (s *WriterSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
