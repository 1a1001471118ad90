package lexer

import (
	"strings"
	"testing"

	"github.com/turtletowerz/m3u8lex/charsrc"
)

// FuzzDrainInvariants exercises the universal invariants from the
// tokenizer's property-test contract: concatenation, monotonicity, and
// no-starvation, over arbitrary (including pathological) byte input.
func FuzzDrainInvariants(f *testing.F) {
	f.Add([]byte("#EXTM3U\n"))
	f.Add([]byte("#EXTINF:3.5,Title\nhttp://a/b\n"))
	f.Add([]byte(`#EXT-X-STREAM-INF:BANDWIDTH=1280000,CODECS="avc1.4d401f"` + "\n"))
	f.Add([]byte(`#EXT-X-KEY:URI="k"junk,NEXT=1` + "\n"))
	f.Add([]byte("#EXTINF:3.2,Title with = sign\n"))
	f.Add([]byte("\x00#=,\"\r\n\r#EXT"))
	f.Add([]byte(""))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1<<20 {
			return // property tests bound input to 1 MiB
		}
		input := string(data)

		verboseToks := mustDrain(t, input, true)
		quietToks := mustDrain(t, input, false)

		// Concatenation law (verbose): every token's value, in order,
		// reproduces the input exactly.
		var sb strings.Builder
		for _, tok := range verboseToks {
			sb.WriteString(tok.Value)
		}
		if sb.String() != input {
			t.Fatalf("concatenation law violated: got %q want %q", sb.String(), input)
		}

		// Idempotence of verbose filtering.
		var filtered []Token
		for _, tok := range verboseToks {
			if !tok.Kind.IsStructural() {
				filtered = append(filtered, tok)
			}
		}
		if !tokensEqual(filtered, quietToks) {
			t.Fatalf("verbose filtering mismatch:\n filtered=%v\n quiet=%v", filtered, quietToks)
		}

		// Monotonicity: non-decreasing (line, column).
		for i := 1; i < len(verboseToks); i++ {
			prev, cur := verboseToks[i-1].Start, verboseToks[i].Start
			if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Column < prev.Column) {
				t.Fatalf("monotonicity violated at %d: %v -> %v", i, prev, cur)
			}
		}

		// No starvation: bounded token count.
		if max := 4*len(input) + 2; len(verboseToks) > max {
			t.Fatalf("too many tokens: got %d, want <= %d", len(verboseToks), max)
		}

		// Newline discipline: line_number never exceeds the LF count.
		lfCount := strings.Count(input, "\n")
		var maxLine int
		for _, tok := range verboseToks {
			if tok.Start.Line > maxLine {
				maxLine = tok.Start.Line
			}
		}
		if maxLine > lfCount+1 {
			t.Fatalf("line number %d exceeds LF count+1 %d", maxLine, lfCount+1)
		}
	})
}

func mustDrain(t *testing.T, input string, verbose bool) []Token {
	t.Helper()
	s := New(charsrc.FromString(input), Options{Verbose: verbose})
	toks, err := s.Drain()
	if err != nil {
		t.Fatalf("unexpected drain error: %v", err)
	}
	return toks
}

func tokensEqual(a, b []Token) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
