// Package progressbar renders a fixed-width terminal progress bar, used by
// the hls downloader to report segment download progress.
package progressbar

import (
	"fmt"
	"strings"
)

// Bar tracks completed units against a fixed total and renders itself as a
// single carriage-return-prefixed line suitable for repeated Printing.
type Bar struct {
	completed int
	total     int
}

// New creates a Bar tracking total units of work.
func New(total int) *Bar {
	return &Bar{total: total}
}

// Advance marks n additional units complete and returns the bar rendered at
// its new position. n must be non-negative.
func (b *Bar) Advance(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("progressbar: advance amount %d is negative", n)
	}

	b.completed += n
	if b.completed >= b.total {
		return fmt.Sprintf("\r[%s] (%d / %d)", strings.Repeat("=", b.total), b.total, b.total), nil
	}
	return fmt.Sprintf("\r[%s>%s] (%d / %d)", strings.Repeat("=", b.completed), strings.Repeat(" ", b.total-b.completed-1), b.completed, b.total), nil
}

// Done fills the bar to completion and renders it.
func (b *Bar) Done() string {
	bar, _ := b.Advance(b.total)
	return bar
}
