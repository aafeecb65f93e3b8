package core

// streaming.go provides the readers used for the single-shot import read.
//
//   - bomSkippingReader drops a leading UTF-8 BOM written by spreadsheet tools
//   - limitedReader fails with ErrFileTooLarge past the configured size
//   - contextReader stops reading once the request is cancelled
//
// ReadImportText applies all three and replaces invalid UTF-8 with U+FFFD.

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrFileTooLarge is returned when an import exceeds the size limit.
var ErrFileTooLarge = errors.New("file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type bomSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader returns a reader that drops a leading UTF-8 BOM.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	return &bomSkippingReader{br: bufio.NewReader(r)}
}

func (r *bomSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if bytes.Equal(head, utf8BOM) {
			r.br.Discard(len(utf8BOM))
		} else if err != nil && err != io.EOF && len(head) == 0 {
			return 0, err
		}
	}
	return r.br.Read(p)
}

type limitedReader struct {
	r         io.Reader
	remaining int64
}

// NewLimitedReader returns a reader that fails with ErrFileTooLarge once
// more than max bytes have been read. A max of zero or less disables the
// limit.
func NewLimitedReader(r io.Reader, max int64) io.Reader {
	if max <= 0 {
		return r
	}
	return &limitedReader{r: r, remaining: max}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	// Read one byte past the limit so an exact-size file still succeeds.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// NewContextReader returns a reader that fails with the context error once
// ctx is done.
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// WrapForImport layers cancellation, the size limit and BOM removal over r.
func WrapForImport(ctx context.Context, r io.Reader, maxBytes int64) io.Reader {
	return NewBOMSkippingReader(NewLimitedReader(NewContextReader(ctx, r), maxBytes))
}

// ReadImportText performs the single-shot import read. Any failure is an
// *ImportParseError.
func ReadImportText(ctx context.Context, r io.Reader, maxBytes int64) (string, error) {
	data, err := io.ReadAll(WrapForImport(ctx, r, maxBytes))
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			err = fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
		}
		return "", &ImportParseError{Reason: "read file", Err: err}
	}
	return strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
