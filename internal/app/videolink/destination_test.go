package videolink

import "testing"

func TestDestination(t *testing.T) {
	const id = "123e4567-e89b-12d3-a456-426614174000"
	const parent = "00000000-0000-0000-0000-0000000000aa"

	tests := []struct {
		name string
		c    Content
		want string
	}{
		{"video", Content{ID: id, Kind: KindVideo}, "/videos/" + id},
		{"short", Content{ID: id, Kind: KindShort}, "/shorts/" + id},
		{"series", Content{ID: id, Kind: KindSeries}, "/series/" + id},
		{"course", Content{ID: id, Kind: KindCourse}, "/courses/" + id},
		{"episode", Content{ID: id, Kind: KindVideo, SeriesID: parent}, "/series/" + parent + "/episodes/" + id},
		{"lesson", Content{ID: id, Kind: KindVideo, CourseID: parent}, "/courses/" + parent + "/lessons/" + id},
		{"unknown kind", Content{ID: id}, "/videos/" + id},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Destination(tt.c); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJoinLocation(t *testing.T) {
	tests := []struct {
		base, path, query, want string
	}{
		{"", "/videos/x", "", "/videos/x"},
		{"https://taboo.tv", "/videos/x", "", "https://taboo.tv/videos/x"},
		{"https://taboo.tv/", "/videos/x", "utm_source=tw", "https://taboo.tv/videos/x?utm_source=tw"},
	}
	for _, tt := range tests {
		if got := JoinLocation(tt.base, tt.path, tt.query); got != tt.want {
			t.Errorf("JoinLocation(%q,%q,%q): got %q, want %q", tt.base, tt.path, tt.query, got, tt.want)
		}
	}
}
