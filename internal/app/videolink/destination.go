package videolink

import "strings"

// Destination is the web app path a share link for c lands on.
func Destination(c Content) string {
	switch c.Kind {
	case KindShort:
		return "/shorts/" + c.ID
	case KindSeries:
		return "/series/" + c.ID
	case KindCourse:
		return "/courses/" + c.ID
	}
	if c.CourseID != "" {
		return "/courses/" + c.CourseID + "/lessons/" + c.ID
	}
	if c.SeriesID != "" {
		return "/series/" + c.SeriesID + "/episodes/" + c.ID
	}
	return FallbackDestination(c.ID)
}

// FallbackDestination is used when the catalog cannot be reached; the watch page does its own
// lookup and renders not-found itself.
func FallbackDestination(id string) string {
	return "/videos/" + id
}

// JoinLocation prefixes path with base (may be empty for a relative Location) and carries
// rawQuery over, e.g. utm_* params from the shared link.
func JoinLocation(base, path, rawQuery string) string {
	loc := strings.TrimRight(base, "/") + path
	if rawQuery != "" {
		loc += "?" + rawQuery
	}
	return loc
}
