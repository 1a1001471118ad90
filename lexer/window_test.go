package lexer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtletowerz/m3u8lex/charsrc"
)

// trickleSource hands back one byte per Fill call, forcing the window
// through many small refills so growth and shift logic actually run.
type trickleSource struct {
	r io.Reader
}

func (t *trickleSource) Fill(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return t.r.Read(p[:1])
}

func TestWindowGrowsPastInitialCapacity(t *testing.T) {
	big := strings.Repeat("a", minCapacity*3)
	w := newWindow(charsrc.FromString(big))

	// Ask for lookahead deep enough that the window must grow past its
	// initial capacity before it can satisfy the request, since nothing
	// is consumed (so shift never reclaims room).
	assert.True(t, w.hasLookahead(minCapacity*2))
	assert.Greater(t, len(w.buf), minCapacity)
}

func TestWindowShiftPreservesUnreadTail(t *testing.T) {
	w := newWindow(&trickleSource{r: strings.NewReader(strings.Repeat("b", minCapacity*2))})

	// Consume enough to approach the shift threshold without draining the
	// stream, then confirm the cursor still reads correctly afterward.
	for i := 0; i < minCapacity-10; i++ {
		assert.True(t, w.hasLookahead(0))
		w.advance()
	}
	assert.True(t, w.hasLookahead(0))
	assert.Equal(t, byte('b'), w.current())
}

func TestWindowSentinelAlwaysZero(t *testing.T) {
	w := newWindow(&trickleSource{r: strings.NewReader("xyz")})
	for i := 0; i < 3; i++ {
		assert.True(t, w.hasLookahead(0))
		w.advance()
	}
	assert.Equal(t, byte(0), w.buf[w.bufferedLen])
}

type erroringSource struct{ err error }

func (e *erroringSource) Fill([]byte) (int, error) { return 0, e.err }

func TestWindowSurfacesSourceError(t *testing.T) {
	boom := io.ErrClosedPipe
	w := newWindow(&erroringSource{err: boom})
	assert.False(t, w.hasLookahead(0))
	assert.Equal(t, boom, w.Err())
}

func TestWindowStopsOnRepeatedZeroRead(t *testing.T) {
	w := newWindow(&zeroSource{})
	assert.False(t, w.hasLookahead(0))
	assert.NoError(t, w.Err())
	assert.True(t, w.isEOF())
}

type zeroSource struct{}

func (zeroSource) Fill(p []byte) (int, error) { return 0, nil }
