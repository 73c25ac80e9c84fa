package photoengine

import (
	"os"
	"testing"
)

func findIssue(issues []IntegrityIssue, kind, subject string) bool {
	for _, is := range issues {
		if is.Kind == kind && is.Subject == subject {
			return true
		}
	}
	return false
}

func TestCheckIntegrityCleanStore(t *testing.T) {
	s := newTestStore(t)
	src := writeUpload(t, s, "gallery/a.jpg")
	if _, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "A", Src: src}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreatePost(BlogPostInput{Title: "Post", Date: "2024-01-01", Body: "<p>x</p>"}); err != nil {
		t.Fatal(err)
	}

	if issues := s.CheckIntegrity(); len(issues) != 0 {
		t.Errorf("clean store should report nothing, got %+v", issues)
	}
}

func TestCheckIntegrityMissingBody(t *testing.T) {
	s := newTestStore(t)
	post, err := s.CreatePost(BlogPostInput{Title: "Halved", Date: "2024-01-01", Body: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(s.bodyPath(post.Slug)); err != nil {
		t.Fatal(err)
	}

	if !findIssue(s.CheckIntegrity(), IssueMissingBody, post.Slug) {
		t.Error("record without body should be reported")
	}
}

func TestCheckIntegrityOrphanBody(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.bodyPath("ghost"), []byte("<p>boo</p>"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !findIssue(s.CheckIntegrity(), IssueOrphanBody, "ghost") {
		t.Error("body without record should be reported")
	}
}

func TestCheckIntegrityOrphanAndMissingUploads(t *testing.T) {
	s := newTestStore(t)
	orphan := writeUpload(t, s, "gallery/orphan.jpg")
	if _, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "Gone", Src: "/uploads/gallery/gone.jpg"}); err != nil {
		t.Fatal(err)
	}

	issues := s.CheckIntegrity()
	if !findIssue(issues, IssueOrphanUpload, orphan) {
		t.Error("unreferenced upload should be reported")
	}
	if !findIssue(issues, IssueMissingUpload, "/uploads/gallery/gone.jpg") {
		t.Error("missing owned file should be reported")
	}
}

func TestCheckIntegrityMultipleHeroes(t *testing.T) {
	s := newTestStore(t)
	// Hand-written doc with two heroes, as if edited outside the store.
	doc := galleryDoc{Images: []GalleryImage{
		{ID: "1", Category: "Concerts", Slug: "a", Src: "/uploads/a.jpg", IsHero: true},
		{ID: "2", Category: "concerts", Slug: "b", Src: "/uploads/b.jpg", IsHero: true},
	}}
	if err := saveDocument(s.galleryPath(), doc); err != nil {
		t.Fatal(err)
	}

	if !findIssue(s.CheckIntegrity(), IssueMultipleHero, "concerts") {
		t.Error("two heroes in one normalized category should be reported")
	}
}
