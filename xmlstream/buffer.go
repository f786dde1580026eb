package xmlstream

import (
	"bufio"
	"errors"
	"io"
)

// DefaultMaxLine is the recommended maximum line length from spec §4.2.
const DefaultMaxLine = 64 * 1024

// ErrLineTooLong is returned by ReadLine when a line exceeds the maxLine
// without a terminating '\n', guarding against malformed dumps that would
// otherwise force unbounded buffering.
var ErrLineTooLong = errors.New("xmlstream: line exceeds maximum length")

// LineBuffer is a refill-on-demand read buffer backing a Reader. It never
// copies data the caller hasn't asked for: Peek returns a window into the
// internal buffer, and Consume advances past it.
type LineBuffer struct {
	br      *bufio.Reader
	maxLine int
}

// NewLineBuffer wraps r with a buffer capped at maxLine bytes per line or
// peek request. maxLine <= 0 selects DefaultMaxLine.
func NewLineBuffer(r io.Reader, maxLine int) *LineBuffer {
	if maxLine <= 0 {
		maxLine = DefaultMaxLine
	}
	return &LineBuffer{br: bufio.NewReaderSize(r, maxLine), maxLine: maxLine}
}

// Peek returns the next n bytes without advancing the read position. It
// may return fewer bytes at EOF.
func (b *LineBuffer) Peek(n int) ([]byte, error) {
	if n > b.maxLine {
		n = b.maxLine
	}
	p, err := b.br.Peek(n)
	if err == bufio.ErrBufferFull || err == io.EOF {
		err = nil
	}
	return p, err
}

// Consume advances the buffer by n bytes, which must have been returned by
// a prior Peek.
func (b *LineBuffer) Consume(n int) (int, error) {
	return b.br.Discard(n)
}

// ReadLine returns the next '\n'-terminated slice, including the
// terminator, or the final unterminated tail at EOF. The returned slice is
// only valid until the next call.
func (b *LineBuffer) ReadLine() ([]byte, error) {
	line, err := b.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return nil, ErrLineTooLong
	}
	if err == io.EOF && len(line) > 0 {
		return line, nil
	}
	return line, err
}

// Read satisfies io.Reader, so a LineBuffer can itself feed a downstream
// decoder (e.g. encoding/xml.Decoder) without losing buffered data.
func (b *LineBuffer) Read(p []byte) (int, error) {
	return b.br.Read(p)
}
