package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveVisitAndStats(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	visits := []Visit{
		{Path: "/portfolio/concerts/", IPHash: "aa", Timestamp: now},
		{Path: "/portfolio/concerts/", IPHash: "bb", Timestamp: now},
		{Path: "/blog/summer-festival/", IPHash: "aa", Timestamp: now},
	}
	for i := range visits {
		if err := s.SaveVisit(&visits[i]); err != nil {
			t.Fatalf("SaveVisit failed: %v", err)
		}
	}

	stats, err := s.GetStats(now.Add(-time.Hour), now.Add(time.Hour), 10)
	if err != nil {
		t.Fatalf("GetStats failed: %v", err)
	}
	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Path != "/portfolio/concerts/" {
		t.Errorf("TopPages = %+v, want concerts first", stats.TopPages)
	}
}

func TestCleanupOldVisits(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	old := Visit{Path: "/", IPHash: "aa", Timestamp: now.AddDate(0, 0, -400)}
	fresh := Visit{Path: "/", IPHash: "bb", Timestamp: now}
	for _, v := range []Visit{old, fresh} {
		if err := s.SaveVisit(&v); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.CleanupOldVisits(365); err != nil {
		t.Fatalf("CleanupOldVisits failed: %v", err)
	}
	stats, err := s.GetStats(now.AddDate(-2, 0, 0), now.Add(time.Hour), 10)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalViews != 1 {
		t.Errorf("TotalViews after cleanup = %d, want 1", stats.TotalViews)
	}
}

func TestIsBot(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15", false},
		{"Googlebot/2.1 (+http://www.google.com/bot.html)", true},
		{"curl/8.4.0", true},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsBot(tt.ua); got != tt.want {
			t.Errorf("IsBot(%q) = %v, want %v", tt.ua, got, tt.want)
		}
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://news.ycombinator.com/item?id=1", "news.ycombinator.com"},
		{"https://www.example.com/page", "example.com"},
		{"https://myportfolio.example/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := CleanReferrer(tt.ref, "myportfolio.example"); got != tt.want {
			t.Errorf("CleanReferrer(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
