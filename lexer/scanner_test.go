package lexer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtletowerz/m3u8lex/charsrc"
)

func drainAll(t *testing.T, input string, verbose bool) []Token {
	t.Helper()
	s := New(charsrc.FromString(input), Options{Verbose: verbose})
	toks, err := s.Drain()
	assert.NoError(t, err)
	return toks
}

func TestSimpleTag(t *testing.T) {
	toks := drainAll(t, "#EXTM3U\n", false)
	assert.Len(t, toks, 1)
	assert.Equal(t, TagName, toks[0].Kind)
	assert.Equal(t, "EXTM3U", toks[0].Value)
	assert.Equal(t, Position{Line: 1, Column: 2}, toks[0].Start)
}

func TestSimpleTagVerbose(t *testing.T) {
	toks := drainAll(t, "#EXTM3U\n", true)
	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{CommentMarker, TagName, EndOfLine, EndOfFile}, kinds)
	assert.Equal(t, "#", toks[0].Value)
	assert.Equal(t, "EXTM3U", toks[1].Value)
	assert.Equal(t, "\n", toks[2].Value)
}

func TestTagValuePayload(t *testing.T) {
	toks := drainAll(t, "#EXTINF:3.5,Title\nhttp://a/b\n", false)
	want := []Token{
		{Kind: TagName, Value: "EXTINF", Start: Position{1, 2}},
		{Kind: TagValue, Value: "3.5,Title", Start: Position{1, 9}},
		{Kind: Uri, Value: "http://a/b", Start: Position{2, 1}},
	}
	assert.Equal(t, want, toks)
}

func TestAttributeListWithQuotedValue(t *testing.T) {
	toks := drainAll(t, `#EXT-X-STREAM-INF:BANDWIDTH=1280000,CODECS="avc1.4d401f"`+"\n", false)
	want := []Token{
		{Kind: TagName, Value: "EXT-X-STREAM-INF", Start: Position{1, 2}},
		{Kind: AttributeName, Value: "BANDWIDTH", Start: Position{1, 19}},
		{Kind: AttributeValue, Value: "1280000", Start: Position{1, 29}},
		{Kind: AttributeName, Value: "CODECS", Start: Position{1, 37}},
		{Kind: QuotedAttributeValue, Value: "avc1.4d401f", Start: Position{1, 45}},
	}
	assert.Equal(t, want, toks)
}

func TestCommentCRLF(t *testing.T) {
	toks := drainAll(t, "#comment\r\n", false)
	assert.Equal(t, []Token{{Kind: Comment, Value: "comment", Start: Position{1, 2}}}, toks)

	s := New(charsrc.FromString("#comment\r\nnext"), Options{Verbose: true})
	for {
		tok, ok := s.ReadToken()
		if !ok {
			t.Fatal("expected an EndOfLine token")
		}
		if tok.Kind == EndOfLine {
			assert.Equal(t, "\r\n", tok.Value)
			break
		}
	}
	assert.Equal(t, 2, s.Line())
	assert.Equal(t, 1, s.Column())
}

func TestUnexpectedDataAfterClosingQuote(t *testing.T) {
	toks := drainAll(t, `#EXT-X-KEY:URI="k"junk,NEXT=1`+"\n", false)
	want := []Token{
		{Kind: TagName, Value: "EXT-X-KEY", Start: Position{1, 2}},
		{Kind: QuotedAttributeValue, Value: "k", Start: Position{1, 17}},
		{Kind: UnexpectedData, Value: "junk", Start: Position{1, 19}},
		{Kind: AttributeName, Value: "NEXT", Start: Position{1, 24}},
		{Kind: AttributeValue, Value: "1", Start: Position{1, 29}},
	}
	assert.Equal(t, want, toks)
}

func TestEmptyInput(t *testing.T) {
	s := New(charsrc.FromString(""), Options{})
	toks, err := s.Drain()
	assert.NoError(t, err)
	assert.Empty(t, toks)
	assert.Equal(t, 1, s.Line())
	assert.Equal(t, 1, s.Column())
}

func TestEqualsSignInsideTagValueDemotesToTagValue(t *testing.T) {
	toks := drainAll(t, "#EXTINF:3.2,Title with = sign\n", false)
	assert.Len(t, toks, 2)
	assert.Equal(t, TagValue, toks[1].Kind)
	assert.Equal(t, "3.2,Title with = sign", toks[1].Value)
}

func TestLowercaseAttributeNameDemotesToTagValue(t *testing.T) {
	toks := drainAll(t, "#EXT-X-FOO:bar=baz\n", false)
	assert.Equal(t, TagValue, toks[1].Kind)
	assert.Equal(t, "bar=baz", toks[1].Value)
}

func TestUnterminatedQuotedValue(t *testing.T) {
	toks := drainAll(t, `#EXT-X-KEY:URI="unterminated`+"\n", true)
	var last Token
	for _, tok := range toks {
		if tok.Kind == QuotedAttributeValue {
			last = tok
		}
	}
	assert.Equal(t, "unterminated", last.Value)
	// No synthesized terminator token.
	for _, tok := range toks {
		assert.NotEqual(t, QuotedAttributeValueTerminator, tok.Kind)
	}
}

func TestExtAtEOFEmitsTagName(t *testing.T) {
	toks := drainAll(t, "#EXT", false)
	assert.Equal(t, []Token{{Kind: TagName, Value: "EXT", Start: Position{1, 2}}}, toks)
}

func TestStrayHashIsComment(t *testing.T) {
	toks := drainAll(t, "#\n", false)
	assert.Equal(t, []Token{{Kind: Comment, Value: "", Start: Position{1, 2}}}, toks)
}

func TestLoneCRIsLiteral(t *testing.T) {
	toks := drainAll(t, "not\ra\nnewline\n", false)
	assert.Equal(t, []Token{{Kind: Uri, Value: "not\ra", Start: Position{1, 1}}}, toks[:1])
}

func TestVerboseIdempotence(t *testing.T) {
	input := "#EXT-X-STREAM-INF:BANDWIDTH=1,CODECS=\"x\"\nhttp://a\n#EXT-X-ENDLIST\n"
	quiet := drainAll(t, input, false)
	verbose := drainAll(t, input, true)

	var filtered []Token
	for _, tok := range verbose {
		if !tok.Kind.IsStructural() {
			filtered = append(filtered, tok)
		}
	}
	assert.Equal(t, quiet, filtered)
}

func TestConcatenationLawVerbose(t *testing.T) {
	input := "#EXT-X-STREAM-INF:BANDWIDTH=1,CODECS=\"x\"\nhttp://a\n#EXT-X-ENDLIST\n"
	toks := drainAll(t, input, true)

	var sb strings.Builder
	for _, tok := range toks {
		sb.WriteString(tok.Value)
	}
	assert.Equal(t, input, sb.String())
}

// TestLineTerminatorAtRefillBoundary drives the scanner over a source that
// hands back exactly one byte per Fill call, so the cursor sits on the
// sentinel and a refill is required before nearly every byte — including
// whichever byte happens to be a line terminator. Regression for a bug
// where atLineTerminator decided on the pre-refill (stale sentinel) byte
// instead of the byte the refill actually produced, letting the terminator
// get swallowed into the preceding token instead of ending it.
func TestLineTerminatorAtRefillBoundary(t *testing.T) {
	src := &trickleSource{r: strings.NewReader("#EXTM3U\nhttp://a\n")}
	s := New(src, Options{Verbose: true})

	var eols int
	for {
		tok, ok := s.ReadToken()
		if !ok {
			break
		}
		if tok.Kind == EndOfLine {
			eols++
			continue
		}
		assert.NotContains(t, tok.Value, "\n", "line terminator leaked into %v token", tok.Kind)
	}
	assert.Equal(t, 2, eols)
	assert.Equal(t, 3, s.Line())
}

func TestMonotonicPositions(t *testing.T) {
	input := "#EXT-X-STREAM-INF:BANDWIDTH=1,CODECS=\"x\"\nhttp://a\n#EXT-X-ENDLIST\n"
	toks := drainAll(t, input, true)

	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1].Start, toks[i].Start
		if cur.Line == prev.Line {
			assert.GreaterOrEqual(t, cur.Column, prev.Column)
		} else {
			assert.Greater(t, cur.Line, prev.Line)
		}
	}
}
