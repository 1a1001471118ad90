// Package playlist builds master and media playlist values from an HLS
// document by consuming a lexer.Scanner's token stream. It never inspects
// raw lines or regexes tag payloads; grammar (attribute lists, quoting,
// tag-value vs attribute-list disambiguation) is entirely the lexer's job.
package playlist

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/turtletowerz/m3u8lex/charsrc"
	"github.com/turtletowerz/m3u8lex/lexer"
)

// TODO: figure out a good way to detect whether EXT-X-KEY is for the whole
// media playlist or for a single media segment.
const (
	PlaylistVOD   string = "VOD"
	PlaylistEvent string = "EVENT"

	CryptNone      string = "NONE"
	CryptAES       string = "AES-128"
	CryptSampleAES string = "SAMPLE-AES"

	HDCPLevel0    string = "TYPE0"
	HDCPLevelNone string = "NONE"

	MediaAudio     string = "AUDIO"
	MediaVideo     string = "VIDEO"
	MediaSubtitles string = "SUBTITLES"
	MediaCaptions  string = "CLOSED-CAPTIONS"

	PreciseYes string = "YES"
	CCNone     string = "NONE"

	MediaDefaultYES string = "YES"
	MediaDefaultNO  string = "NO"
)

// EmptyKey represents an empty key response.
var EmptyKey = []byte{0}

// Kind distinguishes the two playlist shapes a decoded document can take.
type Kind int

const (
	KindMaster Kind = iota
	KindMedia
)

func (k Kind) String() string {
	if k == KindMedia {
		return "media"
	}
	return "master"
}

// Playlist is implemented by MasterPlaylist and MediaPlaylist.
type Playlist interface {
	Type() Kind
	// Count reports the number of variants (master) or segments (media)
	// the playlist carries.
	Count() int
}

// AttributePair is one NAME=VALUE pair from an attribute list, already
// classified by the lexer as quoted or unquoted.
type AttributePair struct {
	Name   string
	Value  string
	Quoted bool
}

type attrList []AttributePair

func (a attrList) get(name string) (string, bool) {
	for _, p := range a {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

func (a attrList) has(name string) bool {
	_, ok := a.get(name)
	return ok
}

// entryKind classifies one logical line of the playlist.
type entryKind int

const (
	entryTag entryKind = iota
	entryURI
	entryComment
)

// entry is the semantic layer's unit of grouping: everything lexed between
// one TagName/Uri/Comment token and the next.
type entry struct {
	kind  entryKind
	name  string
	value string
	attrs attrList
	uri   string
	line  int
}

// groupEntries walks a token stream and regroups it into entries, one per
// substantive source line. TagValue, AttributeName, AttributeValue, and
// QuotedAttributeValue tokens all attach to the most recently opened tag
// entry; UnexpectedData is dropped, matching the lexer's own policy of
// surfacing junk without aborting. Blank lines (an empty Uri token) are
// dropped too, the same whitespace-only lines the teacher's line-based
// DecodeReader filtered with strings.TrimSpace.
func groupEntries(s *lexer.Scanner) ([]entry, error) {
	toks, err := s.Drain()
	if err != nil {
		return nil, err
	}

	var entries []entry
	var cur *entry
	flush := func() {
		if cur != nil {
			entries = append(entries, *cur)
			cur = nil
		}
	}

	for _, tok := range toks {
		switch tok.Kind {
		case lexer.TagName:
			flush()
			cur = &entry{kind: entryTag, name: tok.Value, line: tok.Start.Line}
		case lexer.Uri:
			flush()
			if tok.Value == "" {
				// A blank physical line lexes to an empty Uri token (correct
				// at the tokenizer layer); the semantic layer has nothing to
				// do with it, same as the teacher's TrimSpace-based skip.
				continue
			}
			entries = append(entries, entry{kind: entryURI, uri: tok.Value, line: tok.Start.Line})
		case lexer.Comment:
			flush()
			entries = append(entries, entry{kind: entryComment, value: tok.Value, line: tok.Start.Line})
		case lexer.TagValue:
			if cur != nil {
				cur.value = tok.Value
			}
		case lexer.AttributeName:
			if cur != nil {
				cur.attrs = append(cur.attrs, AttributePair{Name: tok.Value})
			}
		case lexer.AttributeValue:
			if cur != nil && len(cur.attrs) > 0 {
				cur.attrs[len(cur.attrs)-1].Value = tok.Value
			}
		case lexer.QuotedAttributeValue:
			if cur != nil && len(cur.attrs) > 0 {
				last := &cur.attrs[len(cur.attrs)-1]
				last.Value = tok.Value
				last.Quoted = true
			}
		}
	}
	flush()
	return entries, nil
}

func decode(s *lexer.Scanner) (Playlist, error) {
	entries, err := groupEntries(s)
	if err != nil {
		return nil, fmt.Errorf("lexing playlist: %w", err)
	}

	if len(entries) == 0 || entries[0].kind != entryTag || entries[0].name != "EXTM3U" {
		return nil, fmt.Errorf(`provided reader is not a valid m3u8 file (does not contain header "#EXTM3U")`)
	}
	entries = entries[1:]

	var isMedia bool
	for _, e := range entries {
		// 4.3.3   - "A Media Playlist tag MUST NOT appear in a Master Playlist."
		// 4.3.3.1 - "The EXT-X-TARGETDURATION tag is REQUIRED."
		if e.kind == entryTag && e.name == "EXT-X-TARGETDURATION" {
			isMedia = true
			break
		}
	}

	if isMedia {
		mp, err := parseMediaPlaylist(entries)
		if err != nil {
			return nil, fmt.Errorf("parsing media playlist: %w", err)
		}
		return mp, nil
	}

	mp, err := parseMasterPlaylist(entries)
	if err != nil {
		return nil, fmt.Errorf("parsing master playlist: %w", err)
	}
	return mp, nil
}

// Decode reads an HLS playlist to completion and builds its MasterPlaylist
// or MediaPlaylist value.
func Decode(r io.Reader) (Playlist, error) {
	return decode(lexer.New(charsrc.FromReader(r), lexer.Options{}))
}

// DecodeContext is Decode, but the underlying reads are cancellable through
// ctx.
func DecodeContext(ctx context.Context, r io.Reader) (Playlist, error) {
	return decode(lexer.New(charsrc.FromContext(ctx, r), lexer.Options{}))
}

// DecodeURL fetches url and decodes the response body. It is recommended
// when the playlist is only known by its remote location; Decode is
// recommended when a reader is already in hand.
func DecodeURL(url string) (Playlist, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("getting m3u8 url %q: %w", url, err)
	}
	defer resp.Body.Close()

	playlist, err := Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decoding from reader: %w", err)
	}
	return playlist, nil
}

// MustDecode implements Decode, but panics if an error occurs.
func MustDecode(r io.Reader) Playlist {
	playlist, err := Decode(r)
	if err != nil {
		panic(err)
	}
	return playlist
}

// MustDecodeURL implements DecodeURL, but panics if an error occurs.
func MustDecodeURL(url string) Playlist {
	playlist, err := DecodeURL(url)
	if err != nil {
		panic(err)
	}
	return playlist
}
