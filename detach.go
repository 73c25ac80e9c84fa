package photoengine

import (
	"fmt"
	"os"
	"strings"
)

// removeImgTags rewrites markup with every img tag whose src exactly equals
// url removed. Returns the new markup and how many tags were dropped.
func removeImgTags(html, url string) (string, int) {
	removed := 0
	out := imgTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		if imgTagSrc(tag) == url {
			removed++
			return ""
		}
		return tag
	})
	return out, removed
}

// Detach removes one previously-reported usage of a URL, leaving every other
// usage intact. It re-locates the owning record from the usage triple under
// the owning collection's lock, so a record edited or deleted since the
// index was built surfaces as ErrNotFound or ErrConflict instead of
// clobbering the concurrent change. The postcondition is that the same
// usage no longer appears on the next BuildIndex.
func (s *Store) Detach(url string, u Usage) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return fmt.Errorf("detach needs a url: %w", ErrValidation)
	}
	switch u.Type {
	case UsagePortfolio:
		return s.detachPortfolio(url, u)
	case UsageBlog:
		return s.detachBlog(url, u)
	case UsagePage:
		return s.detachPage(url, u)
	default:
		return fmt.Errorf("unrecognized usage type %q: %w", u.Type, ErrValidation)
	}
}

// detachPortfolio deletes the whole gallery entry: the portfolio record is
// the reference, so detaching it means removing the image from the gallery.
func (s *Store) detachPortfolio(url string, u Usage) error {
	if u.Context != ContextPortfolio && u.Context != ContextThumbnail {
		return fmt.Errorf("unrecognized portfolio context %q: %w", u.Context, ErrValidation)
	}
	var src, thumb string
	err := s.locker.WithLock(s.galleryPath(), func() error {
		doc, err := s.loadGalleryStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i, img := range doc.Images {
			if img.Src == url || img.Thumb == url {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("gallery entry for %q: %w", url, ErrNotFound)
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

// findPostByOwner matches the usage's owner label against post titles, then
// slugs.
func findPostByOwner(posts []BlogPost, owner string) int {
	for i, p := range posts {
		if p.Title == owner {
			return i
		}
	}
	for i, p := range posts {
		if p.Slug == owner {
			return i
		}
	}
	return -1
}

func (s *Store) detachBlog(url string, u Usage) error {
	switch u.Context {
	case ContextFeatured, ContextGallery:
		return s.locker.WithLock(s.blogPath(), func() error {
			doc, err := s.loadBlogStrict()
			if err != nil {
				return err
			}
			idx := findPostByOwner(doc.Posts, u.Owner)
			if idx < 0 {
				return fmt.Errorf("post %q: %w", u.Owner, ErrNotFound)
			}
			post := &doc.Posts[idx]
			if u.Context == ContextFeatured {
				// Guard against stale index data: only clear the thumbnail
				// if it still holds this exact URL.
				if post.Thumbnail != url {
					return fmt.Errorf("post %q thumbnail is no longer %q: %w", u.Owner, url, ErrConflict)
				}
				post.Thumbnail = ""
			} else {
				found := false
				var kept []string
				for _, g := range post.Gallery {
					if g == url {
						found = true
						continue
					}
					kept = append(kept, g)
				}
				if !found {
					return fmt.Errorf("post %q gallery has no %q: %w", u.Owner, url, ErrNotFound)
				}
				post.Gallery = kept
				delete(post.GalleryMetadata, url)
			}
			return saveDocument(s.blogPath(), doc)
		})
	case ContextContent:
		return s.locker.WithLock(s.blogPath(), func() error {
			doc, err := s.loadBlogStrict()
			if err != nil {
				return err
			}
			idx := findPostByOwner(doc.Posts, u.Owner)
			if idx < 0 {
				return fmt.Errorf("post %q: %w", u.Owner, ErrNotFound)
			}
			bodyPath := s.bodyPath(doc.Posts[idx].Slug)
			data, err := os.ReadFile(bodyPath)
			if err != nil {
				return fmt.Errorf("post body for %q unreadable: %w", u.Owner, err)
			}
			rewritten, removed := removeImgTags(string(data), url)
			if removed == 0 {
				return fmt.Errorf("post %q body has no image %q: %w", u.Owner, url, ErrNotFound)
			}
			return saveRaw(bodyPath, []byte(rewritten))
		})
	default:
		return fmt.Errorf("unrecognized blog context %q: %w", u.Context, ErrValidation)
	}
}

func (s *Store) detachPage(url string, u Usage) error {
	if u.Context != ContextPageBody {
		return fmt.Errorf("unrecognized page context %q: %w", u.Context, ErrValidation)
	}
	return s.locker.WithLock(s.pagesPath(), func() error {
		doc, err := s.loadPagesStrict()
		if err != nil {
			return err
		}
		var page *Page
		switch {
		case doc.About.Title == u.Owner || strings.EqualFold(u.Owner, "about"):
			page = &doc.About
		case doc.Contact.Title == u.Owner || strings.EqualFold(u.Owner, "contact"):
			page = &doc.Contact
		default:
			return fmt.Errorf("page %q: %w", u.Owner, ErrNotFound)
		}
		rewritten, removed := removeImgTags(page.HTML, url)
		if removed == 0 {
			return fmt.Errorf("page %q has no image %q: %w", u.Owner, url, ErrNotFound)
		}
		page.HTML = rewritten
		return saveDocument(s.pagesPath(), doc)
	})
}
