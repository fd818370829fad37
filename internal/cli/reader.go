package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

type lineResult struct {
	err  error
	line string
}

// LineReader reads lines from an input stream while honoring context
// cancellation. A single goroutine owns the underlying reader, so a canceled
// read does not lose the line that arrives later.
type LineReader struct {
	scanner *bufio.Scanner
	lines   chan lineResult
	once    sync.Once
}

// NewLineReader creates a reader over r.
func NewLineReader(r io.Reader) *LineReader {
	if r == nil {
		panic("reader cannot be nil")
	}
	return &LineReader{
		scanner: bufio.NewScanner(r),
		lines:   make(chan lineResult),
	}
}

func (r *LineReader) start() {
	go func() {
		defer close(r.lines)
		for r.scanner.Scan() {
			r.lines <- lineResult{line: r.scanner.Text()}
		}
		err := r.scanner.Err()
		if err == nil {
			err = io.EOF
		}
		r.lines <- lineResult{err: err}
	}()
}

// ReadLine returns the next line with surrounding whitespace removed.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.once.Do(r.start)

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		if res.err != nil {
			return "", res.err
		}
		return strings.TrimSpace(res.line), nil
	}
}
