package engine

import (
	"bufio"
	"context"
	"io"
)

// LineSource yields raw input lines. ReadLine returns io.EOF once the input is
// exhausted.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

const maxLineSize = 1 << 20

// ScannerSource reads newline separated lines from r.
type ScannerSource struct {
	sc *bufio.Scanner
}

func NewScannerSource(r io.Reader) *ScannerSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &ScannerSource{sc: sc}
}

func (s *ScannerSource) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.sc.Scan() {
		return s.sc.Text(), nil
	}
	if err := s.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
