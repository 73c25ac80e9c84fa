package photoengine

import (
	"errors"
	"os"
	"testing"
)

func TestCreateImageAllocatesCategoryScopedSlug(t *testing.T) {
	s := newTestStore(t)

	a, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "Encore", Src: "/uploads/a.jpg"})
	if err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}
	if a.Slug != "encore" {
		t.Errorf("slug = %q, want encore", a.Slug)
	}

	// Same title in the same category is suffixed.
	b, err := s.CreateImage(GalleryImageInput{Category: "concerts", Title: "Encore", Src: "/uploads/b.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if b.Slug != "encore-2" {
		t.Errorf("colliding slug = %q, want encore-2", b.Slug)
	}

	// Same title in another category does not collide.
	c, err := s.CreateImage(GalleryImageInput{Category: "Sports", Title: "Encore", Src: "/uploads/c.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Slug != "encore" {
		t.Errorf("cross-category slug = %q, want encore", c.Slug)
	}
}

func TestCreateImageRequiresSrc(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "No File"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

// Two Concerts images without explicit order sort reverse-
// chronologically; order 0 on the older one moves it first regardless.
func TestGalleryDefaultSortAndOrderOverride(t *testing.T) {
	s := newTestStore(t)

	jan, err := s.CreateImage(GalleryImageInput{
		Category: "Concerts", Title: "Old Title", Venue: "The Garden",
		Captured: "2023-01-01", Src: "/uploads/jan.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateImage(GalleryImageInput{
		Category: "Concerts", Title: "June Show",
		Captured: "2023-06-01", Src: "/uploads/jun.jpg",
	}); err != nil {
		t.Fatal(err)
	}

	got := s.ListImagesByCategory("Concerts")
	if len(got) != 2 || got[0].Captured != "2023-06-01" {
		t.Fatalf("default sort should place June first, got %+v", got)
	}

	zero := 0
	in := imageToInput(jan)
	in.Order = &zero
	if _, err := s.UpdateImage(jan.ID, in); err != nil {
		t.Fatal(err)
	}

	got = s.ListImagesByCategory("Concerts")
	if got[0].ID != jan.ID {
		t.Errorf("order 0 should move the January image first, got %+v", got[0])
	}
}

// imageToInput rebuilds the full-edit input an admin form would submit.
func imageToInput(img GalleryImage) GalleryImageInput {
	return GalleryImageInput{
		Category: img.Category,
		Title:    img.Title,
		Slug:     img.Slug,
		Venue:    img.Venue,
		Sport:    img.Sport,
		Camera:   img.Camera,
		Lens:     img.Lens,
		Exposure: img.Exposure,
		Aperture: img.Aperture,
		ISO:      img.ISO,
		Keywords: img.Keywords,
		Captured: img.Captured,
		Order:    img.Order,
		IsHero:   img.IsHero,
		Src:      img.Src,
		Thumb:    img.Thumb,
		Width:    img.Width,
		Height:   img.Height,
	}
}

// Renaming the title regenerates the slug from the new title
// plus venue and capture year, unique within the category only.
func TestUpdateImageRenameRegeneratesSlug(t *testing.T) {
	s := newTestStore(t)

	img, err := s.CreateImage(GalleryImageInput{
		Category: "Concerts", Title: "Old Title", Venue: "The Garden",
		Captured: "2023-01-01", Src: "/uploads/a.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	if img.Slug != "old-title-the-garden-2023" {
		t.Fatalf("initial slug = %q", img.Slug)
	}

	in := imageToInput(img)
	in.Title = "New Title"
	updated, err := s.UpdateImage(img.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Slug != "new-title-the-garden-2023" {
		t.Errorf("regenerated slug = %q, want new-title-the-garden-2023", updated.Slug)
	}
}

func TestUpdateImageCategoryChangeRegeneratesSlug(t *testing.T) {
	s := newTestStore(t)

	img, err := s.CreateImage(GalleryImageInput{
		Category: "Concerts", Title: "Encore", Venue: "The Garden",
		Captured: "2023-01-01", Src: "/uploads/a.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}
	taken, err := s.CreateImage(GalleryImageInput{
		Category: "Sports", Title: "Encore", Venue: "The Garden",
		Captured: "2023-01-01", Src: "/uploads/b.jpg",
	})
	if err != nil {
		t.Fatal(err)
	}

	// Moving category re-derives the slug against the new scope, even when
	// the same request carries a manual slug.
	in := imageToInput(img)
	in.Category = "Sports"
	in.Slug = "hand-picked"
	updated, err := s.UpdateImage(img.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if want := taken.Slug + "-2"; updated.Slug != want {
		t.Errorf("slug after category move = %q, want %q", updated.Slug, want)
	}
}

func TestUpdateImageManualSlugEdit(t *testing.T) {
	s := newTestStore(t)

	img, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "Encore", Src: "/uploads/a.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	taken, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "Front Row", Src: "/uploads/b.jpg"})
	if err != nil {
		t.Fatal(err)
	}

	// Manual edit with no field change is honored, uniqueness-checked.
	in := imageToInput(img)
	in.Slug = taken.Slug
	updated, err := s.UpdateImage(img.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Slug != "front-row-2" {
		t.Errorf("manual colliding slug = %q, want front-row-2", updated.Slug)
	}

	// When title changes in the same request, regeneration wins over the
	// manual slug. Easy to invert accidentally; pinned here.
	in = imageToInput(updated)
	in.Title = "Final Bow"
	in.Slug = "hand-picked"
	updated, err = s.UpdateImage(img.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Slug != "final-bow" {
		t.Errorf("field change should win over manual slug, got %q", updated.Slug)
	}
}

func TestSetHeroSingletonPerCategory(t *testing.T) {
	s := newTestStore(t)

	a, _ := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "A", Src: "/uploads/a.jpg", IsHero: true})
	b, _ := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "B", Src: "/uploads/b.jpg"})
	other, _ := s.CreateImage(GalleryImageInput{Category: "Sports", Title: "C", Src: "/uploads/c.jpg", IsHero: true})

	if err := s.SetHero(b.ID, true); err != nil {
		t.Fatal(err)
	}

	var heroes []string
	for _, img := range s.ListImagesByCategory("Concerts") {
		if img.IsHero {
			heroes = append(heroes, img.ID)
		}
	}
	if len(heroes) != 1 || heroes[0] != b.ID {
		t.Errorf("concerts heroes = %v, want exactly [%s]", heroes, b.ID)
	}
	if got, _ := s.GetImage(a.ID); got.IsHero {
		t.Error("previous hero flag should be cleared")
	}
	// Heroes in other categories are untouched.
	if got, _ := s.GetImage(other.ID); !got.IsHero {
		t.Error("hero in another category should be untouched")
	}
}

func TestDeleteImageRemovesOwnedFiles(t *testing.T) {
	s := newTestStore(t)
	src := writeUpload(t, s, "gallery/a.jpg")
	thumb := writeUpload(t, s, "gallery/thumbs/a.jpg")

	img, err := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "A", Src: src, Thumb: thumb})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteImage(img.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := s.GetImage(img.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	for _, url := range []string{src, thumb} {
		if _, err := os.Stat(s.uploadFilePath(url)); !os.IsNotExist(err) {
			t.Errorf("owned file %s should be deleted", url)
		}
	}

	// Double delete reports not found, not a crash.
	if err := s.DeleteImage(img.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestReorderCategory(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "A", Src: "/uploads/a.jpg", Captured: "2023-01-01"})
	b, _ := s.CreateImage(GalleryImageInput{Category: "Concerts", Title: "B", Src: "/uploads/b.jpg", Captured: "2023-06-01"})

	if err := s.ReorderCategory("Concerts", []string{a.ID, b.ID}); err != nil {
		t.Fatal(err)
	}
	got := s.ListImagesByCategory("Concerts")
	if got[0].ID != a.ID || got[1].ID != b.ID {
		t.Errorf("reorder not applied: %v, %v", got[0].Title, got[1].Title)
	}

	// An id from outside the category fails the whole request.
	c, _ := s.CreateImage(GalleryImageInput{Category: "Sports", Title: "C", Src: "/uploads/c.jpg"})
	if err := s.ReorderCategory("Concerts", []string{c.ID, a.ID}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}
