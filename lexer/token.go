package lexer

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

// Token kinds. CommentMarker through EndOfFile, except UnexpectedData, are
// structural: they carry punctuation or a line terminator rather than
// semantic content, and are suppressed when the Scanner's Verbose option is
// off. UnexpectedData is always returned.
const (
	None Kind = iota

	Uri
	Comment
	TagName
	TagValue
	AttributeName
	AttributeValue
	QuotedAttributeValue

	CommentMarker
	TagNameValueSeparator
	AttributeNameValueSeparator
	QuotedAttributeValueMarker
	QuotedAttributeValueTerminator
	AttributeSeparator
	UnexpectedData
	EndOfLine
	EndOfFile
)

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Uri:
		return "Uri"
	case Comment:
		return "Comment"
	case TagName:
		return "TagName"
	case TagValue:
		return "TagValue"
	case AttributeName:
		return "AttributeName"
	case AttributeValue:
		return "AttributeValue"
	case QuotedAttributeValue:
		return "QuotedAttributeValue"
	case CommentMarker:
		return "CommentMarker"
	case TagNameValueSeparator:
		return "TagNameValueSeparator"
	case AttributeNameValueSeparator:
		return "AttributeNameValueSeparator"
	case QuotedAttributeValueMarker:
		return "QuotedAttributeValueMarker"
	case QuotedAttributeValueTerminator:
		return "QuotedAttributeValueTerminator"
	case AttributeSeparator:
		return "AttributeSeparator"
	case UnexpectedData:
		return "UnexpectedData"
	case EndOfLine:
		return "EndOfLine"
	case EndOfFile:
		return "EndOfFile"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsStructural reports whether k carries punctuation or a line terminator
// rather than semantic content — the set of kinds suppressed when Verbose
// is false.
func (k Kind) IsStructural() bool {
	switch k {
	case CommentMarker, TagNameValueSeparator, AttributeNameValueSeparator,
		QuotedAttributeValueMarker, QuotedAttributeValueTerminator,
		AttributeSeparator, EndOfLine, EndOfFile:
		return true
	default:
		return false
	}
}

// Position is a 1-based line/column pair. Tabs count as one column.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a value object: kind, verbatim source text, and the position of
// its first character. Once emitted it carries no reference to the
// Scanner's buffer and outlives it freely.
type Token struct {
	Kind  Kind
	Value string
	Start Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Value, t.Start)
}
