package videolink

import (
	"errors"
	"testing"
)

func TestValidateBaseURL(t *testing.T) {
	for _, ok := range []string{"https://taboo.tv", "http://localhost:3000", "https://taboo.tv/app"} {
		if err := ValidateBaseURL(ok); err != nil {
			t.Errorf("ValidateBaseURL(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "taboo.tv", "ftp://taboo.tv", "https://", "https://taboo.tv?x=1", "https://taboo.tv#top"} {
		if err := ValidateBaseURL(bad); !errors.Is(err, ErrInvalidBaseURL) {
			t.Errorf("ValidateBaseURL(%q): got %v, want ErrInvalidBaseURL", bad, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"", KindVideo},
		{"video", KindVideo},
		{"SHORT", KindShort},
		{" series ", KindSeries},
		{"course", KindCourse},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q): got %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseKind("podcast"); !errors.Is(err, ErrInvalidKind) {
		t.Errorf("ParseKind(podcast): got %v", err)
	}
}
