package lexer

import (
	"io"

	"github.com/turtletowerz/m3u8lex/charsrc"
)

// minCapacity is the smallest buffer the window ever allocates.
const minCapacity = 2048

// shiftDivisor controls the shift policy: a shift is triggered once the
// unread tail from cursor to the end of the buffer is at most
// capacity/shiftDivisor.
const shiftDivisor = 16

// window is the character window (component A): a sliding, growable buffer
// refilled from a charsrc.Source, with a trailing sentinel NUL so the
// scanner's inner dispatch can read buf[cursor] without a bounds check.
//
// It also carries lineAnchor, the offset of the start of the current line
// within the buffer, because shifting the buffer and resetting the anchor
// on a newline are both buffer-relative operations (component B leans on
// this but does not own it).
type window struct {
	source charsrc.Source

	buf         []byte
	cursor      int
	bufferedLen int
	lineAnchor  int

	eof bool
	err error
}

func newWindow(source charsrc.Source) *window {
	return &window{
		source: source,
		buf:    make([]byte, minCapacity),
	}
}

// current returns the byte at the cursor. It never needs a refill: either
// the cursor sits on real data already buffered, or it sits on the
// sentinel at bufferedLen, which is always a valid zero byte.
func (w *window) current() byte {
	return w.buf[w.cursor]
}

// hasLookahead guarantees buf[cursor+k] is real buffered data if it
// returns true, refilling as needed to find out.
func (w *window) hasLookahead(k int) bool {
	for w.cursor+k >= w.bufferedLen {
		if !w.refill() {
			return w.cursor+k < w.bufferedLen
		}
	}
	return true
}

// byteAt returns buf[cursor+k] and whether it is real data, per
// hasLookahead's guarantee.
func (w *window) byteAt(k int) (byte, bool) {
	if !w.hasLookahead(k) {
		return 0, false
	}
	return w.buf[w.cursor+k], true
}

// isEOF must only be called when the cursor is sitting on the sentinel
// (cursor == bufferedLen). It attempts one more refill to distinguish
// "no more data buffered right now" from "the source is exhausted".
func (w *window) isEOF() bool {
	if w.cursor != w.bufferedLen {
		return false
	}
	if w.refill() {
		return false
	}
	return w.err == nil && w.eof
}

// Err returns a sticky source failure, if any.
func (w *window) Err() error {
	return w.err
}

// advance consumes the byte at the cursor, moving the cursor forward by
// one. The caller is responsible for having established (via current,
// byteAt, or isEOF) that there is a byte to consume.
func (w *window) advance() byte {
	b := w.buf[w.cursor]
	w.cursor++
	return b
}

// refill attempts to grow the buffered region by at least one byte,
// shifting and/or growing the backing array as needed first. It returns
// true iff bufferedLen increased.
func (w *window) refill() bool {
	if w.err != nil || w.eof {
		return false
	}

	w.maybeShift()
	if w.bufferedLen >= len(w.buf)-1 {
		if !w.grow() {
			return false
		}
	}

	zeroReads := 0
	for w.bufferedLen < len(w.buf)-1 {
		n, err := w.source.Fill(w.buf[w.bufferedLen : len(w.buf)-1])
		if n > 0 {
			w.bufferedLen += n
			w.buf[w.bufferedLen] = 0 // refresh the sentinel
			return true
		}
		if err != nil {
			if err == io.EOF {
				w.eof = true
			} else {
				w.err = err
			}
			return false
		}
		zeroReads++
		if zeroReads >= 2 {
			// Source returned nothing twice in succession with no error;
			// the policy in §4.A treats this as end of stream.
			w.eof = true
			return false
		}
	}
	return false
}

// maybeShift relocates buf[cursor:bufferedLen] to offset 0 when the unread
// tail of the buffer (measured from cursor to the end of capacity) has
// shrunk to capacity/shiftDivisor or less.
func (w *window) maybeShift() {
	capacity := len(w.buf)
	if capacity-w.cursor > capacity/shiftDivisor {
		return
	}
	w.shift()
}

func (w *window) shift() {
	if w.cursor == 0 {
		return
	}
	n := copy(w.buf, w.buf[w.cursor:w.bufferedLen])
	w.bufferedLen = n
	w.lineAnchor -= w.cursor
	w.cursor = 0
	w.buf[w.bufferedLen] = 0
}

// grow doubles the buffer's capacity, capped at the largest representable
// positive int. Returns false if the buffer cannot grow any further, which
// is treated as terminal by refill.
func (w *window) grow() bool {
	const maxInt = int(^uint(0) >> 1)
	curCap := len(w.buf)
	if curCap > maxInt/2 {
		return false
	}
	newCap := curCap * 2
	if newCap <= curCap {
		return false
	}
	nb := make([]byte, newCap)
	copy(nb, w.buf[:w.bufferedLen+1])
	w.buf = nb
	return true
}
