package playlist

import (
	"fmt"
	"regexp"
)

// instreamRegex validates the INSTREAM-ID enumerated-string. The lexer has
// already stripped the surrounding quotes by the time this runs, unlike the
// teacher's original version of this pattern, which matched the quotes too.
var instreamRegex = regexp.MustCompile(`^(CC[1-4]|SERVICE[1-5][0-9]?|SERVICE6[0-3])$`)

// Resolution contains the width and height of a MasterPlaylist stream.
type Resolution struct { // 4.3.4.2
	Height int64
	Width  int64
}

// IVariant represents the EXT-X-I-FRAME-STREAM-INF type.
type IVariant struct { // 4.3.4.3
	URI          string
	Bandwidth    int64
	BandwidthAvg int64
	Codecs       string
	Resolution   Resolution
	Video        string
	HDCPLevel    string
}

// Variant represents the EXT-X-STREAM-INF type.
type Variant struct { // 4.3.4.2
	IVariant
	ProgramID      int // removed in Protocol 6
	FrameRate      float32
	Audio          string
	Subtitles      string
	ClosedCaptions string
}

// SessionData represents an EXT-X-SESSION-DATA entry. A playlist may
// contain multiple, but not with the same DATA-ID and LANGUAGE.
type SessionData struct { // 4.3.4.4
	DataID   string
	Value    string
	URI      string
	Language string // should be RFC 5646-compliant
}

// Rendition contains an alternative rendition of the same content in the
// Master Playlist.
type Rendition struct { // 4.3.4.1
	Type            string
	URI             string
	GroupID         string
	Language        string
	AssocLanguage   string
	Name            string
	Default         string // defaults to NO
	AutoSelect      string // defaults to NO
	Forced          string // defaults to NO
	InstreamID      string
	Characteristics string
	Channels        string
}

// MasterPlaylist represents a Master Playlist M3U8 document.
type MasterPlaylist struct { // 4.3.4
	Variants     []Variant
	IVariants    []IVariant
	SessionData  []SessionData // a playlist MAY carry several, as long as DATA-ID differs
	SessionKey   *Key
	Renditions   []Rendition
	Independent  bool
	TimeOffset   float32
	Precise      bool
	Version      int
	VariantCount int
}

// Type returns KindMaster.
func (m *MasterPlaylist) Type() Kind { return KindMaster }

// Count returns the total number of variant and I-frame variant streams.
func (m *MasterPlaylist) Count() int { return m.VariantCount }

func parseRendition(attrs attrList) (*Rendition, error) {
	typ, ok := attrs.get("TYPE")
	if !ok {
		return nil, fmt.Errorf("EXT-X-MEDIA tag MUST include type information")
	}
	if typ != MediaAudio && typ != MediaVideo && typ != MediaSubtitles && typ != MediaCaptions {
		return nil, fmt.Errorf("invalid media type %q", typ)
	}
	if !attrs.has("GROUP-ID") {
		return nil, fmt.Errorf("EXT-X-MEDIA tag MUST include group id")
	}
	if !attrs.has("NAME") {
		return nil, fmt.Errorf("EXT-X-MEDIA tag MUST include name")
	}

	hasInstream := attrs.has("INSTREAM-ID")
	if typ == MediaCaptions && !hasInstream {
		return nil, fmt.Errorf("EXT-X-MEDIA tag MUST contain instream id if media type is closed captions")
	}
	if typ != MediaCaptions && hasInstream {
		return nil, fmt.Errorf("EXT-X-MEDIA tag MUST NOT contain instream id if media type is not closed captions")
	}

	rend := &Rendition{
		Default:    MediaDefaultNO,
		AutoSelect: MediaDefaultNO,
		Forced:     MediaDefaultNO,
	}

	for _, p := range attrs {
		switch p.Name {
		case "TYPE":
			rend.Type = p.Value
		case "URI":
			if typ == MediaCaptions {
				return nil, fmt.Errorf("URI cannot exist with type defined as %q", MediaCaptions)
			}
			rend.URI = p.Value
		case "GROUP-ID":
			rend.GroupID = p.Value
		case "LANGUAGE":
			rend.Language = p.Value
		case "ASSOC-LANGUAGE":
			rend.AssocLanguage = p.Value
		case "NAME":
			rend.Name = p.Value
		case "DEFAULT":
			if p.Value != MediaDefaultNO && p.Value != MediaDefaultYES {
				return nil, fmt.Errorf("invalid media default value %q", p.Value)
			}
			rend.Default = p.Value
		case "AUTOSELECT":
			if p.Value != MediaDefaultNO && p.Value != MediaDefaultYES {
				return nil, fmt.Errorf("invalid media autoselect value %q", p.Value)
			}
			rend.AutoSelect = p.Value
		case "FORCED":
			if p.Value != MediaDefaultNO && p.Value != MediaDefaultYES {
				return nil, fmt.Errorf("invalid media forced value %q", p.Value)
			}
			rend.Forced = p.Value
		case "INSTREAM-ID":
			match := instreamRegex.FindStringSubmatch(p.Value)
			if match == nil {
				return nil, fmt.Errorf("invalid instream id value %q", p.Value)
			}
			rend.InstreamID = match[1]
		case "CHARACTERISTICS":
			// TODO: split this on commas into a proper slice field
			rend.Characteristics = p.Value
		case "CHANNELS":
			// TODO: split this on slashes into a proper slice field
			rend.Channels = p.Value
		}
	}
	return rend, nil
}

func parseVariant(attrs attrList) (*Variant, error) {
	if !attrs.has("BANDWIDTH") {
		return nil, fmt.Errorf("variant stream MUST include bandwidth information")
	}

	variant := new(Variant)
	for _, p := range attrs {
		var err error
		switch p.Name {
		case "PROGRAM-ID":
			_, err = fmt.Sscanf(p.Value, "%d", &variant.ProgramID)
		case "BANDWIDTH":
			_, err = fmt.Sscanf(p.Value, "%d", &variant.Bandwidth)
		case "AVERAGE-BANDWIDTH":
			_, err = fmt.Sscanf(p.Value, "%d", &variant.BandwidthAvg)
		case "CODECS":
			variant.Codecs = p.Value
		case "RESOLUTION":
			_, err = fmt.Sscanf(p.Value, "%dx%d", &variant.Resolution.Width, &variant.Resolution.Height)
		case "FRAME-RATE":
			_, err = fmt.Sscanf(p.Value, "%f", &variant.FrameRate)
		case "HDCP-LEVEL":
			if p.Value != HDCPLevel0 && p.Value != HDCPLevelNone {
				err = fmt.Errorf("invalid enum for %s: %q", p.Name, p.Value)
			}
			variant.HDCPLevel = p.Value
		case "AUDIO":
			variant.Audio = p.Value
		case "VIDEO":
			variant.Video = p.Value
		case "SUBTITLES":
			variant.Subtitles = p.Value
		case "CLOSED-CAPTIONS":
			variant.ClosedCaptions = p.Value
		}

		if err != nil {
			return nil, fmt.Errorf("parsing variant attribute %s: %w", p.Name, err)
		}
	}
	return variant, nil
}

func parseIVariant(attrs attrList) (*IVariant, error) {
	variant := new(IVariant)
	for _, p := range attrs {
		var err error
		switch p.Name {
		case "BANDWIDTH":
			_, err = fmt.Sscanf(p.Value, "%d", &variant.Bandwidth)
		case "AVERAGE-BANDWIDTH":
			_, err = fmt.Sscanf(p.Value, "%d", &variant.BandwidthAvg)
		case "CODECS":
			variant.Codecs = p.Value
		case "RESOLUTION":
			_, err = fmt.Sscanf(p.Value, "%dx%d", &variant.Resolution.Width, &variant.Resolution.Height)
		case "HDCP-LEVEL":
			if p.Value != HDCPLevel0 && p.Value != HDCPLevelNone {
				err = fmt.Errorf("invalid enum for %s: %q", p.Name, p.Value)
			}
			variant.HDCPLevel = p.Value
		case "VIDEO":
			variant.Video = p.Value
		case "URI":
			variant.URI = p.Value
		}

		if err != nil {
			return nil, fmt.Errorf("parsing ivariant attribute %s: %w", p.Name, err)
		}
	}

	if variant.Bandwidth == 0 || variant.URI == "" {
		return nil, fmt.Errorf("ivariant stream MUST include uri and bandwidth information")
	}
	return variant, nil
}

func parseSessionData(attrs attrList) (*SessionData, error) {
	if !attrs.has("DATA-ID") {
		return nil, fmt.Errorf("session data MUST include a data id")
	}

	session := new(SessionData)
	for _, p := range attrs {
		switch p.Name {
		case "DATA-ID":
			session.DataID = p.Value
		case "VALUE":
			session.Value = p.Value
		case "URI":
			session.URI = p.Value
		case "LANGUAGE":
			session.Language = p.Value
		}
	}

	if session.URI != "" && session.Value != "" {
		return nil, fmt.Errorf("URI and VALUE attributes are mutually exclusive, cannot contain both")
	}
	return session, nil
}

func parseMasterPlaylist(entries []entry) (*MasterPlaylist, error) {
	playlist := new(MasterPlaylist)

	for i := 0; i < len(entries); i++ {
		e := entries[i]
		if e.kind != entryTag {
			continue
		}

		switch e.name {
		case "EXT-X-TARGETDURATION", "EXT-X-MEDIA-SEQUENCE", "EXT-X-DISCONTINUITY-SEQUENCE",
			"EXT-X-ENDLIST", "EXT-X-PLAYLIST-TYPE", "EXT-X-I-FRAMES-ONLY", "EXTINF":
			return nil, fmt.Errorf("found media playlist tag %q in master playlist", e.name)
		case "EXT-X-MEDIA":
			rend, err := parseRendition(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing rendition: %w", err)
			}
			playlist.Renditions = append(playlist.Renditions, *rend)
		case "EXT-X-STREAM-INF": // 4.3.4.2
			if i+1 >= len(entries) || entries[i+1].kind != entryURI {
				return nil, fmt.Errorf("EXT-X-STREAM-INF tag MUST be followed by a URI")
			}
			variant, err := parseVariant(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing variant: %w", err)
			}
			variant.URI = entries[i+1].uri
			playlist.Variants = append(playlist.Variants, *variant)
		case "EXT-X-I-FRAME-STREAM-INF": // 4.3.4.3
			ivariant, err := parseIVariant(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing ivariant: %w", err)
			}
			playlist.IVariants = append(playlist.IVariants, *ivariant)
		case "EXT-X-SESSION-DATA": // 4.3.4.4
			session, err := parseSessionData(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing session data: %w", err)
			}
			playlist.SessionData = append(playlist.SessionData, *session)
		case "EXT-X-SESSION-KEY": // 4.3.4.5
			key, err := parseKey(e.attrs)
			if err != nil {
				return nil, fmt.Errorf("parsing session key: %w", err)
			}
			playlist.SessionKey = key
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
				return nil, fmt.Errorf("master playlist contains more than one %s tag", e.name)
			}
			if _, err := fmt.Sscanf(e.value, "%d", &playlist.Version); err != nil {
				return nil, fmt.Errorf("parsing %s to integer: %w", e.name, err)
			}
		}
	}

	playlist.VariantCount = len(playlist.Variants) + len(playlist.IVariants)
	return playlist, nil
}
