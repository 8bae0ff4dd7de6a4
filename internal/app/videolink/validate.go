package videolink

import (
	"errors"
	"net/url"
	"strings"
)

var ErrInvalidBaseURL = errors.New("invalid base url")
var ErrInvalidKind = errors.New("invalid content kind")

// ValidateBaseURL checks a configured origin such as WEB_BASE_URL.
//
// Rules:
// - scheme must be http/https
// - host must be set
// - no query or fragment (paths are appended to it)
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidBaseURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidBaseURL
	}
	if strings.TrimSpace(u.Host) == "" {
		return ErrInvalidBaseURL
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return ErrInvalidBaseURL
	}
	return nil
}

// ParseKind accepts the catalog's type names. An empty value means a plain video.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindVideo, nil
	case KindVideo, KindShort, KindSeries, KindCourse:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}
