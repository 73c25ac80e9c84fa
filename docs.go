package photoengine

import (
	"fmt"
	"path/filepath"
)

// The simpler site documents share one persistence contract with the main
// collections: full overwrite under the document's own lock. Theme is a
// single free-form object; widgets, gear, and press are {items: [...]}
// lists. Their shapes are owned by the admin UI, so the store keeps them as
// loosely-typed JSON rather than inventing schemas for them.

type itemsDoc struct {
	Items []map[string]any `json:"items"`
}

// itemDocNames are the {items: [...]} documents the store will serve.
var itemDocNames = map[string]bool{
	"widgets": true,
	"gear":    true,
	"press":   true,
}

func (s *Store) themePath() string { return filepath.Join(s.dataDir, "theme.json") }

func (s *Store) itemsPath(name string) string {
	return filepath.Join(s.dataDir, name+".json")
}

// Theme returns the site theme object; an empty map when none is saved yet.
func (s *Store) Theme() map[string]any {
	theme := make(map[string]any)
	loadDocument(s.themePath(), &theme)
	return theme
}

// SaveTheme overwrites the theme document.
func (s *Store) SaveTheme(theme map[string]any) error {
	if theme == nil {
		return fmt.Errorf("theme payload is required: %w", ErrValidation)
	}
	return s.locker.WithLock(s.themePath(), func() error {
		return saveDocument(s.themePath(), theme)
	})
}

// Items returns the list document with the given name (widgets, gear,
// press).
func (s *Store) Items(name string) ([]map[string]any, error) {
	if !itemDocNames[name] {
		return nil, fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	var doc itemsDoc
	loadDocument(s.itemsPath(name), &doc)
	return doc.Items, nil
}

// SaveItems overwrites a list document wholesale.
func (s *Store) SaveItems(name string, items []map[string]any) error {
	if !itemDocNames[name] {
		return fmt.Errorf("document %q: %w", name, ErrNotFound)
	}
	if items == nil {
		items = []map[string]any{}
	}
	path := s.itemsPath(name)
	return s.locker.WithLock(path, func() error {
		return saveDocument(path, itemsDoc{Items: items})
	})
}
