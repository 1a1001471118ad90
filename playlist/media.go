package playlist

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
)

// Map represents the EXT-X-MAP initialization section of a segment.
type Map struct { // 4.3.2.5
	URI       string
	ByteRange string
}

// Key contains information for decrypting encrypted segments.
type Key struct { // 4.3.2.4
	Method      string
	URI         string
	IV          string
	KeyFormat   string
	KeyVersions string
	Value       []byte
}

// Load fetches the key's bytes into Value, using client as the request
// client. NONE keys resolve to EmptyKey without a request.
func (k *Key) Load(client *http.Client, base string) error {
	if k.Method != CryptAES {
		if k.Method == CryptNone {
			k.Value = EmptyKey
			return nil
		}
		return fmt.Errorf("this parser does not yet support aes sample keys")
	}

	resp, err := client.Get(k.URI)
	if err != nil {
		return fmt.Errorf("getting key response: %w", err)
	}
	defer resp.Body.Close()

	k.Value, err = ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("getting key bytes: %w", err)
	}
	return nil
}

// Segment represents an individual media segment from a MediaPlaylist.
type Segment struct { // 4.3.2
	URI           string
	Duration      float32
	Title         string
	ByteRange     int
	Offset        int
	Discontinuity bool
	DateTime      string
	KeyIndex      int
	Map           *Map
	// TODO: 4.3.2.7. EXT-X-DATERANGE
}

// MediaPlaylist represents a Media Playlist M3U8 document.
type MediaPlaylist struct { // 4.3.3
	Segments         []*Segment
	Keys             []*Key
	TargetDuration   int64
	MediaSequence    int64
	DiscontinuitySeq int64 // defaults to 0
	PType            string
	IFramesOnly      bool
	Independent      bool
	TimeOffset       float32
	Precise          bool
	Version          int
}

// Type returns KindMedia.
func (m *MediaPlaylist) Type() Kind { return KindMedia }

// Count returns the number of segments in the playlist.
func (m *MediaPlaylist) Count() int { return len(m.Segments) }

func parseKey(attrs attrList) (*Key, error) {
	key := new(Key)
	for _, p := range attrs {
		switch p.Name {
		case "METHOD":
			if p.Value != CryptNone && p.Value != CryptAES && p.Value != CryptSampleAES {
				return nil, fmt.Errorf("invalid key METHOD value %q", p.Value)
			}
			key.Method = p.Value
		case "URI":
			key.URI = p.Value
		case "IV":
			key.IV = p.Value
		case "KEYFORMAT":
			key.KeyFormat = p.Value
		case "KEYFORMATVERSIONS":
			key.KeyVersions = p.Value
		}
	}

	if key.Method != CryptNone && key.URI == "" {
		return nil, fmt.Errorf("if URI is empty, METHOD MUST be NONE")
	}
	return key, nil
}

// parseMediaSegment builds the segment a Uri entry denotes from the tag
// entries accumulated since the previous segment (or the playlist start).
func parseMediaSegment(tags []entry, uri string, keyIndex int) (*Segment, error) {
	segment := &Segment{URI: uri, KeyIndex: keyIndex}

	for _, e := range tags {
		if e.kind != entryTag {
			continue
		}

		switch e.name {
		case "EXTINF": // 4.3.2.1
			options := strings.SplitN(e.value, ",", 2)
			if _, err := fmt.Sscanf(options[0], "%f", &segment.Duration); err != nil {
				return nil, fmt.Errorf("parsing segment attribute %q: %w", e.name, err)
			}
			if len(options) > 1 && options[1] != "" {
				segment.Title = options[1]
			}
		case "EXT-X-BYTERANGE": // 4.3.2.2
			options := strings.SplitN(e.value, "@", 2)
			if _, err := fmt.Sscanf(options[0], "%d", &segment.ByteRange); err != nil {
				return nil, fmt.Errorf("parsing segment attribute %q: %w", e.name, err)
			}
			if len(options) > 1 {
				if _, err := fmt.Sscanf(options[1], "%d", &segment.Offset); err != nil {
					return nil, fmt.Errorf("parsing segment attribute %q: %w", e.name, err)
				}
			}
		case "EXT-X-DISCONTINUITY": // 4.3.2.3
			segment.Discontinuity = true
		case "EXT-X-MAP": // 4.3.2.5
			uri, ok := e.attrs.get("URI")
			if !ok {
				return nil, fmt.Errorf("EXT-X-MAP URI is REQUIRED")
			}
			m := &Map{URI: uri}
			if br, ok := e.attrs.get("BYTERANGE"); ok {
				m.ByteRange = br
			}
			segment.Map = m
		case "EXT-X-PROGRAM-DATE-TIME": // 4.3.2.6
			segment.DateTime = e.value
		}
	}
	return segment, nil
}

func parseMediaPlaylist(entries []entry) (*MediaPlaylist, error) {
	playlist := new(MediaPlaylist)
	var (
		hasDuration bool
		hasEndlist  bool
		pending     []entry
		keyIndex    = -1 // EXT-X-KEY always appears before its URI, so the first segment's keyIndex is -1 until one is seen
	)

	for _, e := range entries {
		if hasEndlist {
			break
		}

		if e.kind == entryURI {
			segment, err := parseMediaSegment(pending, e.uri, keyIndex)
			if err != nil {
				return nil, fmt.Errorf("making new segment: %w", err)
			}
			pending = nil
			playlist.Segments = append(playlist.Segments, segment)
			continue
		}
		if e.kind == entryComment {
			continue
		}

		switch e.name {
		case "EXT-X-MEDIA", "EXT-X-STREAM-INF", "EXT-X-I-FRAME-STREAM-INF", "EXT-X-SESSION-DATA", "EXT-X-SESSION-KEY":
			return nil, fmt.Errorf("found master playlist tag %q in media playlist", e.name)
		case "EXT-X-TARGETDURATION": // 4.3.3.1
			hasDuration = true
			if _, err := fmt.Sscanf(e.value, "%d", &playlist.TargetDuration); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", e.name, err)
			}
		case "EXT-X-KEY":
			key, err := parseKey(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing media playlist key: %w", err)
			}
			playlist.Keys = append(playlist.Keys, key)
			keyIndex++
		case "EXT-X-MEDIA-SEQUENCE": // 4.3.3.2
			if _, err := fmt.Sscanf(e.value, "%d", &playlist.MediaSequence); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", e.name, err)
			}
		case "EXT-X-DISCONTINUITY-SEQUENCE": // 4.3.3.3
			if _, err := fmt.Sscanf(e.value, "%d", &playlist.DiscontinuitySeq); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", e.name, err)
			}
		case "EXT-X-ENDLIST": // 4.3.3.4
			hasEndlist = true
		case "EXT-X-PLAYLIST-TYPE": // 4.3.3.5
			if e.value != PlaylistEvent && e.value != PlaylistVOD {
				return nil, fmt.Errorf("invalid playlist type enum: %s", e.value)
			}
			playlist.PType = e.value
		case "EXT-X-I-FRAMES-ONLY": // 4.3.3.6
			playlist.IFramesOnly = true
		case "EXT-X-INDEPENDENT-SEGMENTS": // 4.3.5.1
			playlist.Independent = true
		case "EXT-X-START": // 4.3.5.2
			if value, ok := e.attrs.get("PRECISE"); ok && value == PreciseYes {
				playlist.Precise = true
			}
			if value, ok := e.attrs.get("TIME-OFFSET"); ok {
				if _, err := fmt.Sscanf(value, "%f", &playlist.TimeOffset); err != nil {
					return nil, fmt.Errorf("parsing EXT-X-START TIME-OFFSET: %w", err)
				}
			}
		case "EXT-X-VERSION": // 4.3.1.2
			if playlist.Version != 0 {
				return nil, fmt.Errorf("media playlist contains more than one %s tag", e.name)
			}
			if _, err := fmt.Sscanf(e.value, "%d", &playlist.Version); err != nil {
				return nil, fmt.Errorf("parsing %s to integer: %w", e.name, err)
			}
		}

		pending = append(pending, e)
	}

	if !hasDuration {
		return nil, fmt.Errorf("EXT-X-TARGETDURATION is a required field, but is missing")
	}
	return playlist, nil
}
