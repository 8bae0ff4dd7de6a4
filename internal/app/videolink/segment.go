package videolink

import "strings"

// SegmentKind tells how a link path segment was interpreted.
type SegmentKind string

const (
	SegmentUUID      SegmentKind = "uuid"
	SegmentShortCode SegmentKind = "short_code"
	SegmentInvalid   SegmentKind = "invalid"
)

// ClassifySegment only looks at the shape of s; a short code may still fail to decode.
func ClassifySegment(s string) SegmentKind {
	switch {
	case IsUUID(s):
		return SegmentUUID
	case IsValidShortCode(s):
		return SegmentShortCode
	default:
		return SegmentInvalid
	}
}

// ParseLinkSegment turns the {code} part of /v/{code} into a content UUID.
//
// Raw UUIDs are still accepted because older share links were built from them.
func ParseLinkSegment(s string) (string, error) {
	switch ClassifySegment(s) {
	case SegmentUUID:
		return strings.ToLower(s), nil
	case SegmentShortCode:
		return Decode(s)
	default:
		return "", ErrInvalidShortCode
	}
}
