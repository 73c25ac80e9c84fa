package photoengine

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Trim Me  ", "trim-me"},
		{"Go 1.24 Released!", "go-1-24-released"},
		{"Jazz à Montréal", "jazz-a-montreal"},
		{"Søren & Łukasz", "soren-lukasz"},
		{"Straße", "strasse"},
		{"---", ""},
		{"", ""},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugParts(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		venue    string
		captured string
		want     []string
	}{
		{"all fields", "Summer Tour", "Red Rocks", "2023-06-01", []string{"summer-tour", "red-rocks", "2023"}},
		{"venue implied by title", "Night at Red Rocks", "Red Rocks", "", []string{"night-at-red-rocks"}},
		{"no year in garbage date", "Show", "", "June 2023", []string{"show"}},
		{"exif style date", "Show", "", "2023:06:01 14:00:00", []string{"show", "2023"}},
		{"empty", "", "", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SlugParts(tt.title, tt.venue, tt.captured)
			if len(got) != len(tt.want) {
				t.Fatalf("SlugParts = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("SlugParts = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestAllocateSlug(t *testing.T) {
	existing := map[string]bool{
		"summer-tour":   true,
		"summer-tour-2": true,
	}

	if got := AllocateSlug([]string{"winter-tour"}, existing, "id-1"); got != "winter-tour" {
		t.Errorf("no collision: got %q", got)
	}
	if got := AllocateSlug([]string{"summer-tour"}, existing, "id-1"); got != "summer-tour-3" {
		t.Errorf("collision should probe to -3, got %q", got)
	}
	if got := AllocateSlug(nil, existing, "4f2a"); got != "4f2a" {
		t.Errorf("empty parts should fall back to synthetic id, got %q", got)
	}
	if got := AllocateSlug(nil, map[string]bool{}, ""); got != "untitled" {
		t.Errorf("nothing at all should still produce a slug, got %q", got)
	}
}

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Concerts", "concerts"},
		{"Sports & Action", "sports-action"},
		{"  Behind   The Scenes ", "behind-the-scenes"},
		{"R&B", "r-b"},
		{"one", "one"},
	}
	for _, tt := range tests {
		if got := NormalizeCategory(tt.in); got != tt.want {
			t.Errorf("NormalizeCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
