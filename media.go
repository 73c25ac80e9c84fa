package photoengine

import (
	"os"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Collection types a usage can belong to.
const (
	UsagePortfolio = "portfolio"
	UsageBlog      = "blog"
	UsagePage      = "page"
)

// Usage contexts within an owner.
const (
	ContextPortfolio = "Portfolio"
	ContextThumbnail = "Portfolio thumbnail"
	ContextFeatured  = "Featured image"
	ContextGallery   = "Gallery"
	ContextContent   = "Content"
	ContextPageBody  = "Page content"
)

// Usage is one place a media URL appears. The (Type, Owner, Context) triple
// identifies it uniquely per URL and is everything the detacher needs to
// locate the owning record again.
type Usage struct {
	Type    string `json:"collectionType"`
	Owner   string `json:"ownerLabel"`
	Context string `json:"context"`
}

// MediaItem is the derived, never-persisted view of one media URL and every
// usage discovered across the collections. It is rebuilt on each query.
type MediaItem struct {
	URL        string  `json:"url"`
	Usages     []Usage `json:"usages"`
	UploadedAt string  `json:"uploadedAt,omitempty"`
}

var (
	imgTagRe = regexp.MustCompile(`(?is)<img\b[^>]*>`)
	// The attribute name must not be preceded by a word char or hyphen, or
	// data-src in lazy-loading tags would match instead of the real src.
	imgSrcRe = regexp.MustCompile(`(?is)(?:^|[^-\w])src\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s>"']+))`)
)

// extractImgSrcs pulls the src attribute out of every reasonably-formed
// <img> tag in raw markup. This is deliberately syntactic, not an HTML
// parse: it tolerates attribute order and quoting variation and nothing
// more.
func extractImgSrcs(html string) []string {
	var srcs []string
	for _, tag := range imgTagRe.FindAllString(html, -1) {
		m := imgSrcRe.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		src := m[1] + m[2] + m[3]
		if src = strings.TrimSpace(src); src != "" {
			srcs = append(srcs, src)
		}
	}
	return srcs
}

// imgTagSrc returns the src of a single already-matched img tag.
func imgTagSrc(tag string) string {
	m := imgSrcRe.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1] + m[2] + m[3])
}

type usageIndex struct {
	usages map[string][]Usage
	seen   map[string]map[Usage]bool
}

func newUsageIndex() *usageIndex {
	return &usageIndex{
		usages: make(map[string][]Usage),
		seen:   make(map[string]map[Usage]bool),
	}
}

// add records a usage, deduplicating by the (type, owner, context) triple
// per URL.
func (ix *usageIndex) add(url string, u Usage) {
	url = strings.TrimSpace(url)
	if url == "" {
		return
	}
	if ix.seen[url] == nil {
		ix.seen[url] = make(map[Usage]bool)
	}
	if ix.seen[url][u] {
		return
	}
	ix.seen[url][u] = true
	ix.usages[url] = append(ix.usages[url], u)
}

// galleryOwnerLabel names a gallery image in the index. Title first, slug
// when untitled.
func galleryOwnerLabel(img GalleryImage) string {
	if img.Title != "" {
		return img.Title
	}
	return img.Slug
}

// BuildIndex walks every collection and the referenced HTML bodies and
// returns the URL → usages mapping. It is a pure read with no side effects
// and takes no locks: it may observe the pre- or post-state of an in-flight
// write (each document read is atomic), so callers must treat the result as
// a snapshot and re-validate before acting on it. The detacher's
// "owner not found" failure is the designed recovery path for staleness.
func (s *Store) BuildIndex() map[string][]Usage {
	ix := newUsageIndex()

	for _, img := range s.loadGallery().Images {
		owner := galleryOwnerLabel(img)
		ix.add(img.Src, Usage{Type: UsagePortfolio, Owner: owner, Context: ContextPortfolio})
		if img.Thumb != "" && img.Thumb != img.Src {
			ix.add(img.Thumb, Usage{Type: UsagePortfolio, Owner: owner, Context: ContextThumbnail})
		}
	}

	for _, post := range s.loadBlog().Posts {
		if post.Thumbnail != "" {
			ix.add(post.Thumbnail, Usage{Type: UsageBlog, Owner: post.Title, Context: ContextFeatured})
		}
		for _, url := range post.Gallery {
			ix.add(url, Usage{Type: UsageBlog, Owner: post.Title, Context: ContextGallery})
		}
		// A missing body is an integrity finding, not an index error.
		if body, err := os.ReadFile(s.bodyPath(post.Slug)); err == nil {
			for _, src := range extractImgSrcs(string(body)) {
				ix.add(src, Usage{Type: UsageBlog, Owner: post.Title, Context: ContextContent})
			}
		}
	}

	pages := s.loadPages()
	for _, pg := range []Page{pages.About, pages.Contact} {
		for _, src := range extractImgSrcs(pg.HTML) {
			ix.add(src, Usage{Type: UsagePage, Owner: pg.Title, Context: ContextPageBody})
		}
	}

	return ix.usages
}

// ListMedia returns the media index as displayable items, sorted by URL.
// Upload timestamps come from the owning gallery record when one exists and
// otherwise fall back to the file's modification time for local URLs; the
// timestamp is display-only and never part of identity.
func (s *Store) ListMedia() []MediaItem {
	uploaded := make(map[string]string)
	for _, img := range s.loadGallery().Images {
		if img.UploadedAt != "" {
			uploaded[img.Src] = img.UploadedAt
			if img.Thumb != "" {
				uploaded[img.Thumb] = img.UploadedAt
			}
		}
	}

	index := s.BuildIndex()
	items := make([]MediaItem, 0, len(index))
	for url, usages := range index {
		item := MediaItem{URL: url, Usages: usages, UploadedAt: uploaded[url]}
		if item.UploadedAt == "" {
			if path := s.uploadFilePath(url); path != "" {
				if fi, err := os.Stat(path); err == nil {
					item.UploadedAt = fi.ModTime().UTC().Format(time.RFC3339)
				}
			}
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].URL < items[j].URL })
	return items
}
