package videolink

import (
	"errors"
	"testing"
)

func TestParseLinkSegment(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr error
	}{
		{"raw uuid", "123e4567-e89b-12d3-a456-426614174000", "123e4567-e89b-12d3-a456-426614174000", nil},
		{"upper uuid", "ABCDEF12-3456-7890-ABCD-EF1234567890", "abcdef12-3456-7890-abcd-ef1234567890", nil},
		{"short code", "0YQJpYwUwvbaLOwTUr4thA", "123e4567-e89b-12d3-a456-426614174000", nil},
		{"unpadded code", "1", "00000000-0000-0000-0000-000000000001", nil},
		{"overflow", "zzzzzzzzzzzzzzzzzzzzzz", "", ErrShortCodeOverflow},
		{"garbage", "hello-world", "", ErrInvalidShortCode},
		{"empty", "", "", ErrInvalidShortCode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLinkSegment(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err: got %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifySegment(t *testing.T) {
	if got := ClassifySegment("123e4567-e89b-12d3-a456-426614174000"); got != SegmentUUID {
		t.Errorf("uuid: got %q", got)
	}
	if got := ClassifySegment("abc"); got != SegmentShortCode {
		t.Errorf("code: got %q", got)
	}
	if got := ClassifySegment("a.b"); got != SegmentInvalid {
		t.Errorf("invalid: got %q", got)
	}
}
