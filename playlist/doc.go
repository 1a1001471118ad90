package playlist

/*
All section definitions and references are from RFC 8216 Protocol Version 7.

An AttributeValue is one of the following:

o  decimal-integer: an unquoted string of characters from the set
  [0..9] expressing an integer in base-10 arithmetic in the range
  from 0 to 2^64-1 (18446744073709551615). A decimal-integer may be
  from 1 to 20 characters long.

o  hexadecimal-sequence: an unquoted string of characters from the
  set [0..9] and [A..F] that is prefixed with 0x or 0X. The maximum
  length of a hexadecimal-sequence depends on its AttributeNames.

o  decimal-floating-point: an unquoted string of characters from the
  set [0..9] and '.' that expresses a non-negative floating-point
  number in decimal positional notation.

o  signed-decimal-floating-point: an unquoted string of characters
  from the set [0..9], '-', and '.' that expresses a signed
  floating-point number in decimal positional notation.

o  quoted-string: a string of characters within a pair of double
  quotes (0x22). The following characters MUST NOT appear in a
  quoted-string: line feed (0xA), carriage return (0xD), or double
  quote (0x22).

o  enumerated-string: an unquoted character string from a set that is
  explicitly defined by the AttributeName. An enumerated-string
  will never contain double quotes ("), commas (,), or whitespace.

o  decimal-resolution: two decimal-integers separated by the "x"
  character. The first integer is a horizontal pixel dimension
  (width); the second is vertical (height).

The lexer already tells attribute values apart from quoted ones
(QuotedAttributeValue vs AttributeValue), so this package never needs
to re-derive that distinction by inspecting quote characters itself —
every case below switches on an already-classified AttributePair.

Tags handled by this package:

#EXTM3U                          (discarded after the header check)
#EXT-X-VERSION
#EXTINF
#EXT-X-BYTERANGE
#EXT-X-DISCONTINUITY
#EXT-X-KEY
#EXT-X-MAP
#EXT-X-PROGRAM-DATE-TIME
#EXT-X-TARGETDURATION
#EXT-X-MEDIA-SEQUENCE
#EXT-X-DISCONTINUITY-SEQUENCE
#EXT-X-ENDLIST
#EXT-X-PLAYLIST-TYPE
#EXT-X-I-FRAMES-ONLY
#EXT-X-MEDIA
#EXT-X-STREAM-INF
#EXT-X-I-FRAME-STREAM-INF
#EXT-X-SESSION-DATA
#EXT-X-SESSION-KEY
#EXT-X-INDEPENDENT-SEGMENTS
#EXT-X-START

Not yet handled: EXT-X-DATERANGE (4.3.2.7).
*/
