package photoengine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GalleryImage is one portfolio image. The record owns its files: deleting
// the record deletes src and thumb from the uploads area. Slug uniqueness
// and the hero flag are both scoped to the normalized category.
type GalleryImage struct {
	ID         string   `json:"id"`
	Category   string   `json:"category"`
	Slug       string   `json:"slug"`
	Title      string   `json:"title,omitempty"`
	Order      *int     `json:"order,omitempty"`
	IsHero     bool     `json:"isHero,omitempty"`
	Src        string   `json:"src"`
	Thumb      string   `json:"thumb,omitempty"`
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Camera     string   `json:"camera,omitempty"`
	Lens       string   `json:"lens,omitempty"`
	Exposure   string   `json:"exposure,omitempty"`
	Aperture   string   `json:"aperture,omitempty"`
	ISO        string   `json:"iso,omitempty"`
	Venue      string   `json:"venue,omitempty"`
	Sport      string   `json:"sport,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
	Captured   string   `json:"captured,omitempty"`
	UploadedAt string   `json:"uploadedAt,omitempty"`
}

// GalleryImageInput carries the full set of editable fields for create and
// update. EXIF-derived fields arrive as opaque strings from the upload flow
// and are stored without further validation.
type GalleryImageInput struct {
	Category string   `json:"category"`
	Title    string   `json:"title"`
	Slug     string   `json:"slug"`
	Venue    string   `json:"venue"`
	Sport    string   `json:"sport"`
	Camera   string   `json:"camera"`
	Lens     string   `json:"lens"`
	Exposure string   `json:"exposure"`
	Aperture string   `json:"aperture"`
	ISO      string   `json:"iso"`
	Keywords []string `json:"keywords"`
	Captured string   `json:"captured"`
	Order    *int     `json:"order"`
	IsHero   bool     `json:"isHero"`
	Src      string   `json:"src"`
	Thumb    string   `json:"thumb"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
}

type galleryDoc struct {
	Images []GalleryImage `json:"images"`
}

// NormalizeCategory lowercases a free-text category and collapses "&" and
// whitespace runs into single hyphens. The normalized form, never the raw
// string, is the scoping key for slug uniqueness and the hero singleton.
func NormalizeCategory(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	var b strings.Builder
	pending := false
	for _, r := range c {
		if r == '&' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if b.Len() > 0 {
				pending = true
			}
			continue
		}
		if pending {
			b.WriteByte('-')
			pending = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// loadGallery is the read-side loader: a missing or corrupt file yields an
// empty collection. Mutating cycles use loadGalleryStrict instead.
func (s *Store) loadGallery() galleryDoc {
	doc, _ := s.loadGalleryStrict()
	return doc
}

func (s *Store) loadGalleryStrict() (galleryDoc, error) {
	var doc galleryDoc
	err := loadDocument(s.galleryPath(), &doc)
	for i := range doc.Images {
		if doc.Images[i].Category == "" {
			doc.Images[i].Category = "uncategorized"
		}
	}
	return doc, err
}

// ListImages returns every gallery image grouped by category, each category
// in display order.
func (s *Store) ListImages() []GalleryImage {
	doc := s.loadGallery()
	byCat := make(map[string][]GalleryImage)
	var cats []string
	for _, img := range doc.Images {
		key := NormalizeCategory(img.Category)
		if _, ok := byCat[key]; !ok {
			cats = append(cats, key)
		}
		byCat[key] = append(byCat[key], img)
	}
	sort.Strings(cats)
	var out []GalleryImage
	for _, c := range cats {
		imgs := byCat[c]
		sortGalleryImages(imgs)
		out = append(out, imgs...)
	}
	return out
}

// ListImagesByCategory returns the images whose normalized category matches,
// in display order: explicit order values first (ascending), then the rest
// reverse-chronological by capture date.
func (s *Store) ListImagesByCategory(category string) []GalleryImage {
	key := NormalizeCategory(category)
	doc := s.loadGallery()
	var out []GalleryImage
	for _, img := range doc.Images {
		if NormalizeCategory(img.Category) == key {
			out = append(out, img)
		}
	}
	sortGalleryImages(out)
	return out
}

// GalleryCategories returns the normalized category keys present in the
// collection, sorted.
func (s *Store) GalleryCategories() []string {
	doc := s.loadGallery()
	seen := make(map[string]bool)
	var cats []string
	for _, img := range doc.Images {
		key := NormalizeCategory(img.Category)
		if !seen[key] {
			seen[key] = true
			cats = append(cats, key)
		}
	}
	sort.Strings(cats)
	return cats
}

// GetImage returns one image by id.
func (s *Store) GetImage(id string) (GalleryImage, error) {
	doc := s.loadGallery()
	for _, img := range doc.Images {
		if img.ID == id {
			return img, nil
		}
	}
	return GalleryImage{}, fmt.Errorf("gallery image %q: %w", id, ErrNotFound)
}

// sortGalleryImages orders one category for display. Images with an explicit
// order come first, ascending; the rest fall back to capture date, newest
// first, then upload time.
func sortGalleryImages(imgs []GalleryImage) {
	sort.SliceStable(imgs, func(i, j int) bool {
		a, b := imgs[i], imgs[j]
		switch {
		case a.Order != nil && b.Order != nil:
			return *a.Order < *b.Order
		case a.Order != nil:
			return true
		case b.Order != nil:
			return false
		}
		if a.Captured != b.Captured {
			return a.Captured > b.Captured
		}
		return a.UploadedAt > b.UploadedAt
	})
}

// categorySlugs collects the existing slugs in a normalized category,
// excluding the image with the given id. This is the allocator scope for
// gallery slug uniqueness.
func categorySlugs(images []GalleryImage, normalizedCat, excludeID string) map[string]bool {
	existing := make(map[string]bool)
	for _, img := range images {
		if img.ID == excludeID {
			continue
		}
		if NormalizeCategory(img.Category) == normalizedCat {
			existing[img.Slug] = true
		}
	}
	return existing
}

// clearCategoryHero drops the hero flag from every image in the normalized
// category except keepID. Heroes in other categories are untouched.
func clearCategoryHero(images []GalleryImage, normalizedCat, keepID string) {
	for i := range images {
		if images[i].ID == keepID {
			continue
		}
		if NormalizeCategory(images[i].Category) == normalizedCat {
			images[i].IsHero = false
		}
	}
}

// CreateImage adds a gallery entry for an already-uploaded file and returns
// the stored record. The slug is derived from title, venue, and capture year
// and made unique within the normalized category.
func (s *Store) CreateImage(in GalleryImageInput) (GalleryImage, error) {
	if strings.TrimSpace(in.Src) == "" {
		return GalleryImage{}, fmt.Errorf("gallery image needs a src: %w", ErrValidation)
	}
	if strings.TrimSpace(in.Category) == "" {
		in.Category = "uncategorized"
	}

	img := GalleryImage{
		ID:         uuid.NewString(),
		Category:   in.Category,
		Title:      in.Title,
		Order:      in.Order,
		IsHero:     in.IsHero,
		Src:        in.Src,
		Thumb:      in.Thumb,
		Width:      in.Width,
		Height:     in.Height,
		Camera:     in.Camera,
		Lens:       in.Lens,
		Exposure:   in.Exposure,
		Aperture:   in.Aperture,
		ISO:        in.ISO,
		Venue:      in.Venue,
		Sport:      in.Sport,
		Keywords:   in.Keywords,
		Captured:   in.Captured,
		UploadedAt: time.Now().UTC().Format(time.RFC3339),
	}

	err := s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		key := NormalizeCategory(img.Category)
		existing := categorySlugs(doc.Images, key, img.ID)
		if in.Slug != "" {
			img.Slug = AllocateSlug([]string{Slugify(in.Slug)}, existing, img.ID)
		} else {
			img.Slug = AllocateSlug(SlugParts(img.Title, img.Venue, img.Captured), existing, img.ID)
		}
		doc.Images = append(doc.Images, img)
		if img.IsHero {
			clearCategoryHero(doc.Images, key, img.ID)
		}
		return saveDocument(s.galleryPath(), doc)
	})
	if err != nil {
		return GalleryImage{}, err
	}
	return img, nil
}

// UpdateImage rewrites an existing entry from the full input. The slug is
// re-derived whenever title, venue, capture date, or category changed;
// otherwise a manual slug edit is accepted verbatim after a uniqueness
// check. Field-derived regeneration deliberately wins when both a field
// change and a manual slug arrive in the same request.
func (s *Store) UpdateImage(id string, in GalleryImageInput) (GalleryImage, error) {
	var updated GalleryImage
	err := s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i := range doc.Images {
			if doc.Images[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("gallery image %q: %w", id, ErrNotFound)
		}
		cur := doc.Images[idx]

		if strings.TrimSpace(in.Category) == "" {
			in.Category = cur.Category
		}
		next := cur
		next.Category = in.Category
		next.Title = in.Title
		next.Venue = in.Venue
		next.Sport = in.Sport
		next.Camera = in.Camera
		next.Lens = in.Lens
		next.Exposure = in.Exposure
		next.Aperture = in.Aperture
		next.ISO = in.ISO
		next.Keywords = in.Keywords
		next.Captured = in.Captured
		next.Order = in.Order
		next.IsHero = in.IsHero

		key := NormalizeCategory(next.Category)
		existing := categorySlugs(doc.Images, key, id)
		// A category change moves the slug into a new uniqueness scope, so
		// it triggers regeneration like the slug-source fields do, and like
		// them it wins over a manual slug sent in the same request.
		fieldsChanged := next.Title != cur.Title ||
			next.Venue != cur.Venue ||
			next.Captured != cur.Captured ||
			key != NormalizeCategory(cur.Category)
		switch {
		case fieldsChanged:
			next.Slug = AllocateSlug(SlugParts(next.Title, next.Venue, next.Captured), existing, id)
		case in.Slug != "" && in.Slug != cur.Slug:
			next.Slug = AllocateSlug([]string{Slugify(in.Slug)}, existing, id)
		default:
			if existing[next.Slug] {
				next.Slug = AllocateSlug([]string{next.Slug}, existing, id)
			}
		}

		doc.Images[idx] = next
		if next.IsHero {
			clearCategoryHero(doc.Images, key, id)
		}
		updated = next
		return saveDocument(s.galleryPath(), doc)
	})
	if err != nil {
		return GalleryImage{}, err
	}
	return updated, nil
}

// SetHero makes the image the single hero of its normalized category,
// clearing the flag from every other image in that category. With on=false
// the image simply stops being a hero.
func (s *Store) SetHero(id string, on bool) error {
	return s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i := range doc.Images {
			if doc.Images[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("gallery image %q: %w", id, ErrNotFound)
		}
		doc.Images[idx].IsHero = on
		if on {
			clearCategoryHero(doc.Images, NormalizeCategory(doc.Images[idx].Category), id)
		}
		return saveDocument(s.galleryPath(), doc)
	})
}

// ReorderCategory assigns explicit order values 0..n-1 following the given
// id sequence. Ids outside the category (or unknown) fail the whole request
// so a stale admin view cannot scramble another category's ordering.
func (s *Store) ReorderCategory(category string, ids []string) error {
	key := NormalizeCategory(category)
	return s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		byID := make(map[string]int)
		for i, img := range doc.Images {
			if NormalizeCategory(img.Category) == key {
				byID[img.ID] = i
			}
		}
		for _, id := range ids {
			if _, ok := byID[id]; !ok {
				return fmt.Errorf("reorder %s: image %q is not in this category: %w", key, id, ErrConflict)
			}
		}
		for pos, id := range ids {
			p := pos
			doc.Images[byID[id]].Order = &p
		}
		return saveDocument(s.galleryPath(), doc)
	})
}

// DeleteImage removes the entry and the files it owns. The files vanishing
// first is fine; the end state is the same.
func (s *Store) DeleteImage(id string) error {
	var src, thumb string
	err := s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i := range doc.Images {
			if doc.Images[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("gallery image %q: %w", id, ErrNotFound)
		}
		src = doc.Images[idx].Src
		thumb = doc.Images[idx].Thumb
		doc.Images = append(doc.Images[:idx], doc.Images[idx+1:]...)
		return saveDocument(s.galleryPath(), doc)
	})
	if err != nil {
		return err
	}
	if err := s.removeUpload(src); err != nil {
		return err
	}
	if thumb != "" && thumb != src {
		return s.removeUpload(thumb)
	}
	return nil
}
