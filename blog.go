package photoengine

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlogCategories is the fixed category vocabulary for posts. Stored
// categories outside this set are repaired to DefaultBlogCategory on load.
var BlogCategories = []string{
	"concerts",
	"sports",
	"behind-the-scenes",
	"gear",
	"travel",
	"news",
}

// DefaultBlogCategory is the repair fallback for invalid category lists.
const DefaultBlogCategory = "news"

// SEO is optional per-entity search metadata.
type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
}

// GalleryMeta is optional per-URL metadata for a post's gallery array.
type GalleryMeta struct {
	Caption string `json:"caption,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// BlogPost is the JSON half of a post; the prose body lives out-of-band as
// content/<slug>.html. The record and its body file together form one
// logical entity; one without the other is an integrity violation.
type BlogPost struct {
	ID              string                 `json:"id"`
	Slug            string                 `json:"slug"`
	Title           string                 `json:"title"`
	Date            string                 `json:"date"`
	Time            string                 `json:"time,omitempty"`
	Thumbnail       string                 `json:"thumbnail,omitempty"`
	Gallery         []string               `json:"gallery,omitempty"`
	GalleryMetadata map[string]GalleryMeta `json:"galleryMetadata,omitempty"`
	Categories      []string               `json:"categories,omitempty"`
	SEO             *SEO                   `json:"seo,omitempty"`
	Featured        bool                   `json:"featured,omitempty"`
}

// BlogPostInput carries the editable fields plus the HTML body. The body is
// assumed sanitized upstream by the rich-text editor.
type BlogPostInput struct {
	Title           string                 `json:"title"`
	Slug            string                 `json:"slug"`
	Date            string                 `json:"date"`
	Time            string                 `json:"time"`
	Thumbnail       string                 `json:"thumbnail"`
	Gallery         []string               `json:"gallery"`
	GalleryMetadata map[string]GalleryMeta `json:"galleryMetadata"`
	Categories      []string               `json:"categories"`
	SEO             *SEO                   `json:"seo"`
	Featured        bool                   `json:"featured"`
	Body            string                 `json:"body"`
}

type blogDoc struct {
	Posts []BlogPost `json:"posts"`
}

// repairCategories filters a category list against the fixed vocabulary and
// falls back to the default category when nothing valid remains.
func repairCategories(cats []string) []string {
	var out []string
	for _, c := range cats {
		c = strings.ToLower(strings.TrimSpace(c))
		for _, known := range BlogCategories {
			if c == known {
				out = append(out, c)
				break
			}
		}
	}
	if len(out) == 0 {
		return []string{DefaultBlogCategory}
	}
	return out
}

// loadBlog is the read-side loader: a missing or corrupt file yields an
// empty collection. Mutating cycles use loadBlogStrict instead.
func (s *Store) loadBlog() blogDoc {
	doc, _ := s.loadBlogStrict()
	return doc
}

func (s *Store) loadBlogStrict() (blogDoc, error) {
	var doc blogDoc
	err := loadDocument(s.blogPath(), &doc)
	for i := range doc.Posts {
		doc.Posts[i].Categories = repairCategories(doc.Posts[i].Categories)
	}
	return doc, err
}

// sortPosts orders posts newest first by date, then time.
func sortPosts(posts []BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].Date != posts[j].Date {
			return posts[i].Date > posts[j].Date
		}
		return posts[i].Time > posts[j].Time
	})
}

// ListPosts returns all posts, newest first.
func (s *Store) ListPosts() []BlogPost {
	doc := s.loadBlog()
	sortPosts(doc.Posts)
	return doc.Posts
}

// FeaturedPosts returns the posts flagged for the highlighted view, newest
// first.
func (s *Store) FeaturedPosts() []BlogPost {
	var out []BlogPost
	for _, p := range s.ListPosts() {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// GetPost returns one post by slug.
func (s *Store) GetPost(slug string) (BlogPost, error) {
	doc := s.loadBlog()
	for _, p := range doc.Posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return BlogPost{}, fmt.Errorf("post %q: %w", slug, ErrNotFound)
}

// GetPostByID returns one post by its stable id.
func (s *Store) GetPostByID(id string) (BlogPost, error) {
	doc := s.loadBlog()
	for _, p := range doc.Posts {
		if p.ID == id {
			return p, nil
		}
	}
	return BlogPost{}, fmt.Errorf("post %q: %w", id, ErrNotFound)
}

// PostBody reads the out-of-band HTML body for a post.
func (s *Store) PostBody(slug string) (string, error) {
	data, err := os.ReadFile(s.bodyPath(slug))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("post body %q: %w", slug, ErrNotFound)
		}
		return "", fmt.Errorf("read post body %q: %w", slug, err)
	}
	return string(data), nil
}

// allSlugsExcept collects every post slug except the post with the given id.
// Blog slugs are unique across the whole collection, not per category.
func allSlugsExcept(posts []BlogPost, excludeID string) map[string]bool {
	existing := make(map[string]bool)
	for _, p := range posts {
		if p.ID != excludeID {
			existing[p.Slug] = true
		}
	}
	return existing
}

func validatePostInput(in BlogPostInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("post title is required: %w", ErrValidation)
	}
	if in.Date != "" {
		if _, err := time.Parse("2006-01-02", in.Date); err != nil {
			return fmt.Errorf("post date must be YYYY-MM-DD: %w", ErrValidation)
		}
	}
	return nil
}

// CreatePost adds a post and writes its HTML body, both under the blog lock
// so the record and the body file appear together.
func (s *Store) CreatePost(in BlogPostInput) (BlogPost, error) {
	if err := validatePostInput(in); err != nil {
		return BlogPost{}, err
	}
	post := BlogPost{
		ID:              uuid.NewString(),
		Title:           in.Title,
		Date:            in.Date,
		Time:            in.Time,
		Thumbnail:       in.Thumbnail,
		Gallery:         in.Gallery,
		GalleryMetadata: in.GalleryMetadata,
		Categories:      repairCategories(in.Categories),
		SEO:             in.SEO,
		Featured:        in.Featured,
	}
	if post.Date == "" {
		post.Date = time.Now().Format("2006-01-02")
	}

	err := s.locker.WithLock(s.blogPath(), func() error {
		doc, err := s.loadBlogStrict()
		if err != nil {
			return err
		}
		existing := allSlugsExcept(doc.Posts, post.ID)
		if in.Slug != "" {
			post.Slug = AllocateSlug([]string{Slugify(in.Slug)}, existing, post.ID)
		} else {
			post.Slug = AllocateSlug([]string{Slugify(post.Title)}, existing, post.ID)
		}
		if err := saveRaw(s.bodyPath(post.Slug), []byte(in.Body)); err != nil {
			return err
		}
		doc.Posts = append(doc.Posts, post)
		return saveDocument(s.blogPath(), doc)
	})
	if err != nil {
		return BlogPost{}, err
	}
	return post, nil
}

// UpdatePost rewrites a post from the full input. A title change re-derives
// the slug (and wins over a manual slug edit supplied in the same request);
// otherwise a changed slug field is accepted verbatim after a uniqueness
// check. A slug change moves the HTML body to its new file.
func (s *Store) UpdatePost(id string, in BlogPostInput) (BlogPost, error) {
	if err := validatePostInput(in); err != nil {
		return BlogPost{}, err
	}
	var updated BlogPost
	err := s.locker.WithLock(s.blogPath(), func() error {
		doc, err := s.loadBlogStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i := range doc.Posts {
			if doc.Posts[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("post %q: %w", id, ErrNotFound)
		}
		cur := doc.Posts[idx]

		next := cur
		next.Title = in.Title
		next.Date = in.Date
		if next.Date == "" {
			next.Date = cur.Date
		}
		next.Time = in.Time
		next.Thumbnail = in.Thumbnail
		next.Gallery = in.Gallery
		next.GalleryMetadata = in.GalleryMetadata
		next.Categories = repairCategories(in.Categories)
		next.SEO = in.SEO
		next.Featured = in.Featured

		existing := allSlugsExcept(doc.Posts, id)
		switch {
		case next.Title != cur.Title:
			next.Slug = AllocateSlug([]string{Slugify(next.Title)}, existing, id)
		case in.Slug != "" && in.Slug != cur.Slug:
			next.Slug = AllocateSlug([]string{Slugify(in.Slug)}, existing, id)
		}

		if err := saveRaw(s.bodyPath(next.Slug), []byte(in.Body)); err != nil {
			return err
		}
		if next.Slug != cur.Slug {
			if err := removeFile(s.bodyPath(cur.Slug)); err != nil {
				return fmt.Errorf("remove old post body: %w", err)
			}
		}
		doc.Posts[idx] = next
		updated = next
		return saveDocument(s.blogPath(), doc)
	})
	if err != nil {
		return BlogPost{}, err
	}
	return updated, nil
}

// DeletePost removes the record and its HTML body. Referenced upload files
// are left alone: blog posts reference media, gallery entries own it.
func (s *Store) DeletePost(id string) error {
	return s.locker.WithLock(s.blogPath(), func() error {
		doc, err := s.loadBlogStrict()
		if err != nil {
			return err
		}
		idx := -1
		for i := range doc.Posts {
			if doc.Posts[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("post %q: %w", id, ErrNotFound)
		}
		slug := doc.Posts[idx].Slug
		doc.Posts = append(doc.Posts[:idx], doc.Posts[idx+1:]...)
		if err := saveDocument(s.blogPath(), doc); err != nil {
			return err
		}
		return removeFile(s.bodyPath(slug))
	})
}
