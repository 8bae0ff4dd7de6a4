package videolink

import (
	"context"
	"errors"
)

// Kind is the catalog type of a piece of content behind a share link.
type Kind string

const (
	KindVideo  Kind = "video"
	KindShort  Kind = "short"
	KindSeries Kind = "series"
	KindCourse Kind = "course"
)

// ErrContentNotFound means the catalog answered and the content does not exist (or is not
// visible to share links). Transport failures are reported as other errors.
var ErrContentNotFound = errors.New("content not found")

// Content is what the redirect needs to know about a UUID to pick a destination.
//
// SeriesID / CourseID are set when a video is an episode or a lesson.
type Content struct {
	ID       string
	Kind     Kind
	SeriesID string
	CourseID string
}

// ContentLookup resolves a content UUID against the catalog.
type ContentLookup interface {
	Lookup(ctx context.Context, id string) (Content, error)
}
