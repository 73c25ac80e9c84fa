package photoengine

import (
	"fmt"
	"strings"
)

// Page is a fixed static page (about or contact). The email and Formspree
// fields are only meaningful on the contact page.
type Page struct {
	Title             string `json:"title"`
	HTML              string `json:"html"`
	SEO               *SEO   `json:"seo,omitempty"`
	Email             string `json:"email,omitempty"`
	FormspreeEndpoint string `json:"formspreeEndpoint,omitempty"`
}

type pagesDoc struct {
	About   Page `json:"about"`
	Contact Page `json:"contact"`
}

// PageKeys is the fixed, non-extensible set of static pages.
var PageKeys = []string{"about", "contact"}

// loadPages is the read-side loader: a missing or corrupt file yields the
// default pages. Mutating cycles use loadPagesStrict instead.
func (s *Store) loadPages() pagesDoc {
	doc, _ := s.loadPagesStrict()
	return doc
}

func (s *Store) loadPagesStrict() (pagesDoc, error) {
	doc := pagesDoc{
		About:   Page{Title: "About"},
		Contact: Page{Title: "Contact"},
	}
	err := loadDocument(s.pagesPath(), &doc)
	if doc.About.Title == "" {
		doc.About.Title = "About"
	}
	if doc.Contact.Title == "" {
		doc.Contact.Title = "Contact"
	}
	return doc, err
}

// GetPage returns the page for a fixed key ("about" or "contact").
func (s *Store) GetPage(key string) (Page, error) {
	doc := s.loadPages()
	switch strings.ToLower(key) {
	case "about":
		return doc.About, nil
	case "contact":
		return doc.Contact, nil
	default:
		return Page{}, fmt.Errorf("page %q: %w", key, ErrNotFound)
	}
}

// SavePage replaces the page under the given fixed key. Unknown keys are
// rejected rather than created; the page set is not extensible.
func (s *Store) SavePage(key string, page Page) error {
	k := strings.ToLower(strings.TrimSpace(key))
	if k != "about" && k != "contact" {
		return fmt.Errorf("page %q: %w", key, ErrNotFound)
	}
	if strings.TrimSpace(page.Title) == "" {
		return fmt.Errorf("page title is required: %w", ErrValidation)
	}
	return s.locker.WithLock(s.pagesPath(), func() error {
		doc, err := s.loadPagesStrict()
		if err != nil {
			return err
		}
		if k == "about" {
			doc.About = page
		} else {
			doc.Contact = page
		}
		return saveDocument(s.pagesPath(), doc)
	})
}
