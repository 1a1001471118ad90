package lexer

// state is the scanner's internal lexical state. The names mirror the
// thirteen states of the grammar: start-of-line, comment-vs-tag
// disambiguation, tag payload disambiguation, and the attribute-list
// states that follow once a tag has committed to attribute-list mode.
type state int

const (
	stateUriOrCommentMarker state = iota
	stateCommentOrTagName
	stateTagNameValueSeparator
	stateTagValueOrAttributeName
	stateAttributeNameValueSeparator
	stateAttributeValueOrQuotedAttributeValueMarker
	stateQuotedAttributeValue
	stateQuotedAttributeValueTerminator
	stateUnexpectedPostQuotedAttributeValueTerminatorData
	stateAttributeSeparator
	stateAttributeName
	stateEndOfLine
	stateEndOfFile
	stateFinished
)
