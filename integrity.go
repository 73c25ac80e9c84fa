package photoengine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IntegrityIssue is one finding from CheckIntegrity.
type IntegrityIssue struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Detail  string `json:"detail"`
}

// Issue kinds reported by CheckIntegrity.
const (
	IssueMissingBody   = "missing-body"
	IssueOrphanBody    = "orphan-body"
	IssueOrphanUpload  = "orphan-upload"
	IssueMissingUpload = "missing-upload"
	IssueDuplicateSlug = "duplicate-slug"
	IssueMultipleHero  = "multiple-heroes"
)

// CheckIntegrity surfaces the inconsistencies a database would have
// prevented: post records without their HTML body (and vice versa), gallery
// entries whose owned files are gone, upload files nothing references, slug
// collisions, and categories with more than one hero. It is a read-only
// report; repairs stay with the admin.
func (s *Store) CheckIntegrity() []IntegrityIssue {
	var issues []IntegrityIssue

	// Blog records and bodies are two halves of one entity.
	posts := s.loadBlog().Posts
	bodySlugs := make(map[string]bool)
	if entries, err := os.ReadDir(s.contentDir); err == nil {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
				bodySlugs[strings.TrimSuffix(e.Name(), ".html")] = true
			}
		}
	}
	postSlugs := make(map[string]bool)
	seenPostSlug := make(map[string]bool)
	for _, p := range posts {
		postSlugs[p.Slug] = true
		if seenPostSlug[p.Slug] {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueDuplicateSlug,
				Subject: p.Slug,
				Detail:  "more than one blog post carries this slug",
			})
		}
		seenPostSlug[p.Slug] = true
		if !bodySlugs[p.Slug] {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueMissingBody,
				Subject: p.Slug,
				Detail:  "blog post has no content/" + p.Slug + ".html body",
			})
		}
	}
	for slug := range bodySlugs {
		if !postSlugs[slug] {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueOrphanBody,
				Subject: slug,
				Detail:  "HTML body has no blog post record",
			})
		}
	}

	// Gallery entries own their files; per-category slug and hero scoping.
	images := s.loadGallery().Images
	type catSlug struct{ cat, slug string }
	seenImgSlug := make(map[catSlug]bool)
	heroes := make(map[string]int)
	for _, img := range images {
		key := NormalizeCategory(img.Category)
		cs := catSlug{key, img.Slug}
		if seenImgSlug[cs] {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueDuplicateSlug,
				Subject: img.Slug,
				Detail:  fmt.Sprintf("slug repeats within gallery category %q", key),
			})
		}
		seenImgSlug[cs] = true
		if img.IsHero {
			heroes[key]++
		}
		for _, url := range []string{img.Src, img.Thumb} {
			if url == "" {
				continue
			}
			if path := s.uploadFilePath(url); path != "" {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					issues = append(issues, IntegrityIssue{
						Kind:    IssueMissingUpload,
						Subject: url,
						Detail:  "gallery entry " + img.ID + " references a missing file",
					})
				}
			}
		}
	}
	for cat, n := range heroes {
		if n > 1 {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueMultipleHero,
				Subject: cat,
				Detail:  fmt.Sprintf("category has %d hero images, expected at most one", n),
			})
		}
	}

	// Upload files nothing references.
	index := s.BuildIndex()
	uploadsRoot := filepath.Join(s.publicDir, "uploads")
	_ = filepath.WalkDir(uploadsRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.publicDir, path)
		if relErr != nil {
			return nil
		}
		url := "/" + filepath.ToSlash(rel)
		if _, used := index[url]; !used {
			issues = append(issues, IntegrityIssue{
				Kind:    IssueOrphanUpload,
				Subject: url,
				Detail:  "upload file is not referenced by any collection",
			})
		}
		return nil
	})

	return issues
}
