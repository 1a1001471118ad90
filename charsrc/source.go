// Package charsrc supplies the character-source adapters the lexer package
// consumes. The lexer never opens a file, dials a socket, or knows about
// encodings; it only calls Fill on whatever Source it was handed.
package charsrc

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Source is the single capability the lexer's character window needs:
// fill the given slice with as many characters as are ready and report how
// many were read. Fill follows io.Reader's contract — a short read is not
// an error, and repeated calls after exhaustion return (0, io.EOF).
type Source interface {
	Fill(p []byte) (n int, err error)
}

type readerSource struct {
	r io.Reader
}

func (s *readerSource) Fill(p []byte) (int, error) {
	return s.r.Read(p)
}

// FromReader adapts any io.Reader into a Source.
func FromReader(r io.Reader) Source {
	return &readerSource{r: r}
}

// FromString adapts an in-memory string into a Source. Refills never touch
// the heap beyond what strings.Reader itself does.
func FromString(s string) Source {
	return &readerSource{r: strings.NewReader(s)}
}

var utf8BOM = [3]byte{0xEF, 0xBB, 0xBF}

// FromUTF8 wraps r, detecting and discarding a leading UTF-8 byte-order
// mark if present. The returned Source never surfaces the BOM bytes to the
// lexer. If r does not start with a BOM, the bytes peeked to check are
// replayed verbatim.
func FromUTF8(r io.Reader) (Source, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if len(peek) == len(utf8BOM) && peek[0] == utf8BOM[0] && peek[1] == utf8BOM[1] && peek[2] == utf8BOM[2] {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}
	return &readerSource{r: br}, nil
}

type contextSource struct {
	ctx context.Context
	r   io.Reader
}

func (s *contextSource) Fill(p []byte) (int, error) {
	if err := s.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.r.Read(p)
	if err == nil {
		if cerr := s.ctx.Err(); cerr != nil {
			return n, cerr
		}
	}
	return n, err
}

// FromContext adapts r into a Source that observes ctx: a cancelled or
// expired context turns the next Fill into an error instead of blocking
// forever inside r.Read. This is the "suspending" call-site variant; it
// drives the exact same Scanner state machine as a plain FromReader source.
func FromContext(ctx context.Context, r io.Reader) Source {
	return &contextSource{ctx: ctx, r: r}
}
