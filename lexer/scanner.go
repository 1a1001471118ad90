// Package lexer implements the incremental HLS playlist tokenizer: a
// growable character window, line/column position tracking, and the
// thirteen-state machine that turns a character stream into a flat,
// ordered token sequence. The lexer knows nothing about what any tag
// means; that is left to callers such as the playlist package.
package lexer

import (
	"github.com/turtletowerz/m3u8lex/charsrc"
)

// Options configures a Scanner at construction time.
type Options struct {
	// Verbose, when true, surfaces structural tokens (markers,
	// separators, terminators, end-of-line) in addition to the
	// substantive ones. Default false.
	Verbose bool
}

// Scanner tokenizes a character stream on demand. A Scanner is not safe
// for concurrent use: Advance mutates the window, the position, and the
// state in place.
type Scanner struct {
	win        *window
	state      state
	verbose    bool
	lineNumber int // 0-based; exposed line is lineNumber+1

	last Token
}

// New creates a Scanner over source. source is consumed exclusively by the
// Scanner for its lifetime.
func New(source charsrc.Source, opts Options) *Scanner {
	return &Scanner{
		win:     newWindow(source),
		state:   stateUriOrCommentMarker,
		verbose: opts.Verbose,
	}
}

// Line returns the 1-based line immediately following the last-consumed
// character.
func (s *Scanner) Line() int {
	return s.lineNumber + 1
}

// Column returns the 1-based column immediately following the
// last-consumed character.
func (s *Scanner) Column() int {
	return s.win.cursor - s.win.lineAnchor + 1
}

// TokenKind returns the kind of the last-emitted token.
func (s *Scanner) TokenKind() Kind { return s.last.Kind }

// TokenValue returns the value of the last-emitted token.
func (s *Scanner) TokenValue() string { return s.last.Value }

// TokenLine returns the starting line of the last-emitted token.
func (s *Scanner) TokenLine() int { return s.last.Start.Line }

// TokenColumn returns the starting column of the last-emitted token.
func (s *Scanner) TokenColumn() int { return s.last.Start.Column }

// Err returns the character source's sticky failure, if any.
func (s *Scanner) Err() error { return s.win.Err() }

// Advance drives the state machine until it emits one token of the
// visibility demanded by Verbose, then returns whether a token was
// produced. It returns false at end of stream, on a sticky source
// failure, or once the scanner has already reached EndOfFile.
func (s *Scanner) Advance() bool {
	for {
		if s.state == stateFinished {
			return false
		}

		tok, next := s.step()
		if err := s.win.Err(); err != nil {
			s.state = stateFinished
			return false
		}

		s.state = next
		s.last = tok
		if s.verbose || !tok.Kind.IsStructural() {
			return true
		}
	}
}

// ReadToken combines Advance with a snapshot of the resulting token.
func (s *Scanner) ReadToken() (Token, bool) {
	if !s.Advance() {
		return Token{}, false
	}
	return s.last, true
}

// Drain repeats ReadToken until exhausted, preserving order. The returned
// error is the character source's sticky failure, if any.
func (s *Scanner) Drain() ([]Token, error) {
	var toks []Token
	for s.Advance() {
		toks = append(toks, s.last)
	}
	return toks, s.Err()
}

// pos reports the position the cursor currently sits at.
func (s *Scanner) pos() Position {
	return Position{Line: s.Line(), Column: s.Column()}
}

// atLineTerminator reports whether the cursor sits on a newline sequence
// (LF, or CR immediately followed by LF) or at end of stream, without
// consuming anything. A lone CR not followed by LF is neither.
func (s *Scanner) atLineTerminator() (term, eof bool) {
	if s.win.Err() != nil {
		return false, true
	}
	b := s.win.current()
	if s.win.cursor == s.win.bufferedLen {
		if s.win.isEOF() {
			return false, true
		}
		// isEOF refilled the window; re-read, since the byte sitting at
		// the cursor is no longer the sentinel checked above.
		b = s.win.current()
	}
	switch b {
	case '\n':
		return true, false
	case '\r':
		if nb, ok := s.win.byteAt(1); ok && nb == '\n' {
			return true, false
		}
		return false, false
	}
	return false, false
}

// scanUntil consumes characters into value until a line terminator, end of
// stream, a sticky source error, or a byte for which stop returns true —
// none of which are consumed.
func (s *Scanner) scanUntil(stop func(byte) bool) (value []byte, term bool, eof bool) {
	for {
		t, e := s.atLineTerminator()
		if t {
			return value, true, false
		}
		if e {
			return value, false, true
		}
		b := s.win.current()
		if stop(b) {
			return value, false, false
		}
		value = append(value, s.win.advance())
	}
}

// step performs exactly one state transition, returning the token it
// emits and the state to move to next.
func (s *Scanner) step() (Token, state) {
	switch s.state {
	case stateUriOrCommentMarker:
		return s.stepLineStart()
	case stateCommentOrTagName:
		return s.stepCommentOrTagName()
	case stateTagNameValueSeparator:
		return s.stepTagNameValueSeparator()
	case stateTagValueOrAttributeName:
		return s.stepTagValueOrAttributeName()
	case stateAttributeNameValueSeparator:
		return s.stepAttributeNameValueSeparator()
	case stateAttributeValueOrQuotedAttributeValueMarker:
		return s.stepAttributeValueOrQuotedMarker()
	case stateQuotedAttributeValue:
		return s.stepQuotedAttributeValue()
	case stateQuotedAttributeValueTerminator:
		return s.stepQuotedAttributeValueTerminator()
	case stateUnexpectedPostQuotedAttributeValueTerminatorData:
		return s.stepUnexpectedPostQuoteData()
	case stateAttributeSeparator:
		return s.stepAttributeSeparator()
	case stateAttributeName:
		return s.stepAttributeName()
	case stateEndOfLine:
		return s.emitEndOfLine()
	default: // stateEndOfFile
		return s.emitEndOfFile()
	}
}

func (s *Scanner) emitEndOfFile() (Token, state) {
	return Token{Kind: EndOfFile, Start: s.pos()}, stateFinished
}

func (s *Scanner) emitEndOfLine() (Token, state) {
	start := s.pos()
	b := s.win.advance()
	val := []byte{b}
	if b == '\r' {
		val = append(val, s.win.advance())
	}
	s.lineNumber++
	s.win.lineAnchor = s.win.cursor
	return Token{Kind: EndOfLine, Value: string(val), Start: start}, stateUriOrCommentMarker
}

func (s *Scanner) stepLineStart() (Token, state) {
	start := s.pos()
	if _, eof := s.atLineTerminator(); eof {
		return s.emitEndOfFile()
	}
	if s.win.current() == '#' {
		s.win.advance()
		return Token{Kind: CommentMarker, Value: "#", Start: start}, stateCommentOrTagName
	}
	value, _, eof := s.scanUntil(func(byte) bool { return false })
	if eof {
		return Token{Kind: Uri, Value: string(value), Start: start}, stateEndOfFile
	}
	return Token{Kind: Uri, Value: string(value), Start: start}, stateEndOfLine
}

// isExtPrefix reports whether the three characters at the cursor spell
// "EXT", without consuming them.
func (s *Scanner) isExtPrefix() bool {
	b0, ok0 := s.win.byteAt(0)
	b1, ok1 := s.win.byteAt(1)
	b2, ok2 := s.win.byteAt(2)
	return ok0 && ok1 && ok2 && b0 == 'E' && b1 == 'X' && b2 == 'T'
}

func (s *Scanner) stepCommentOrTagName() (Token, state) {
	start := s.pos()
	if s.isExtPrefix() {
		value, term, eof := s.scanUntil(func(b byte) bool { return b == ':' })
		switch {
		case eof:
			return Token{Kind: TagName, Value: string(value), Start: start}, stateEndOfFile
		case term:
			return Token{Kind: TagName, Value: string(value), Start: start}, stateEndOfLine
		default:
			return Token{Kind: TagName, Value: string(value), Start: start}, stateTagNameValueSeparator
		}
	}

	value, _, eof := s.scanUntil(func(byte) bool { return false })
	if eof {
		return Token{Kind: Comment, Value: string(value), Start: start}, stateEndOfFile
	}
	return Token{Kind: Comment, Value: string(value), Start: start}, stateEndOfLine
}

func (s *Scanner) stepTagNameValueSeparator() (Token, state) {
	start := s.pos()
	s.win.advance() // ':'
	return Token{Kind: TagNameValueSeparator, Value: ":", Start: start}, stateTagValueOrAttributeName
}

// stepTagValueOrAttributeName implements the contextual disambiguation:
// the payload after a tag's ':' is tentatively an attribute name until the
// first '=' is seen. At that point the accumulated prefix is tested
// against the attribute-name character class; a match commits to
// attribute-list mode (AttributeName), a mismatch latches the whole
// remainder of the line as a single TagValue with no further '=' checks.
func (s *Scanner) stepTagValueOrAttributeName() (Token, state) {
	start := s.pos()
	var name []byte
	for {
		term, eof := s.atLineTerminator()
		if term {
			return Token{Kind: TagValue, Value: string(name), Start: start}, stateEndOfLine
		}
		if eof {
			return Token{Kind: TagValue, Value: string(name), Start: start}, stateEndOfFile
		}

		b := s.win.current()
		if b != '=' {
			name = append(name, s.win.advance())
			continue
		}

		if len(name) > 0 && isAttrNameClass(name) {
			return Token{Kind: AttributeName, Value: string(name), Start: start}, stateAttributeNameValueSeparator
		}

		// Demoted to TagValue: consume the '=' and the rest of the line
		// without revisiting the decision.
		name = append(name, s.win.advance())
		for {
			term, eof := s.atLineTerminator()
			if term {
				return Token{Kind: TagValue, Value: string(name), Start: start}, stateEndOfLine
			}
			if eof {
				return Token{Kind: TagValue, Value: string(name), Start: start}, stateEndOfFile
			}
			name = append(name, s.win.advance())
		}
	}
}

func (s *Scanner) stepAttributeNameValueSeparator() (Token, state) {
	start := s.pos()
	s.win.advance() // '='
	return Token{Kind: AttributeNameValueSeparator, Value: "=", Start: start}, stateAttributeValueOrQuotedAttributeValueMarker
}

func (s *Scanner) stepAttributeValueOrQuotedMarker() (Token, state) {
	start := s.pos()
	if b, ok := s.win.byteAt(0); ok && b == '"' {
		s.win.advance()
		return Token{Kind: QuotedAttributeValueMarker, Value: "\"", Start: start}, stateQuotedAttributeValue
	}

	value, term, eof := s.scanUntil(func(b byte) bool { return b == ',' })
	switch {
	case eof:
		return Token{Kind: AttributeValue, Value: string(value), Start: start}, stateEndOfFile
	case term:
		return Token{Kind: AttributeValue, Value: string(value), Start: start}, stateEndOfLine
	default:
		return Token{Kind: AttributeValue, Value: string(value), Start: start}, stateAttributeSeparator
	}
}

func (s *Scanner) stepQuotedAttributeValue() (Token, state) {
	start := s.pos()
	value, term, eof := s.scanUntil(func(b byte) bool { return b == '"' })
	switch {
	case eof:
		return Token{Kind: QuotedAttributeValue, Value: string(value), Start: start}, stateEndOfFile
	case term:
		return Token{Kind: QuotedAttributeValue, Value: string(value), Start: start}, stateEndOfLine
	default:
		return Token{Kind: QuotedAttributeValue, Value: string(value), Start: start}, stateQuotedAttributeValueTerminator
	}
}

func (s *Scanner) stepQuotedAttributeValueTerminator() (Token, state) {
	start := s.pos()
	s.win.advance() // closing '"'

	term, eof := s.atLineTerminator()
	switch {
	case eof:
		return Token{Kind: QuotedAttributeValueTerminator, Value: "\"", Start: start}, stateEndOfFile
	case term:
		return Token{Kind: QuotedAttributeValueTerminator, Value: "\"", Start: start}, stateEndOfLine
	case s.win.current() == ',':
		return Token{Kind: QuotedAttributeValueTerminator, Value: "\"", Start: start}, stateAttributeSeparator
	default:
		return Token{Kind: QuotedAttributeValueTerminator, Value: "\"", Start: start}, stateUnexpectedPostQuotedAttributeValueTerminatorData
	}
}

func (s *Scanner) stepUnexpectedPostQuoteData() (Token, state) {
	start := s.pos()
	value, term, eof := s.scanUntil(func(b byte) bool { return b == ',' })
	switch {
	case eof:
		return Token{Kind: UnexpectedData, Value: string(value), Start: start}, stateEndOfFile
	case term:
		return Token{Kind: UnexpectedData, Value: string(value), Start: start}, stateEndOfLine
	default:
		return Token{Kind: UnexpectedData, Value: string(value), Start: start}, stateAttributeSeparator
	}
}

func (s *Scanner) stepAttributeSeparator() (Token, state) {
	start := s.pos()
	s.win.advance() // ','
	return Token{Kind: AttributeSeparator, Value: ",", Start: start}, stateAttributeName
}

func (s *Scanner) stepAttributeName() (Token, state) {
	start := s.pos()
	var name []byte
	for {
		term, eof := s.atLineTerminator()
		if term {
			return Token{Kind: AttributeName, Value: string(name), Start: start}, stateEndOfLine
		}
		if eof {
			return Token{Kind: AttributeName, Value: string(name), Start: start}, stateEndOfFile
		}
		if s.win.current() == '=' {
			return Token{Kind: AttributeName, Value: string(name), Start: start}, stateAttributeNameValueSeparator
		}
		name = append(name, s.win.advance())
	}
}

// isAttrNameClass reports whether every byte of b is in the attribute-name
// character class: A-Z, 0-9, '-'. An empty slice never qualifies.
func isAttrNameClass(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-') {
			return false
		}
	}
	return true
}
