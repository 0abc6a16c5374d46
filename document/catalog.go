package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// ErrNotFound is returned by Catalog.Get for unknown document IDs.
var ErrNotFound = errors.New("base document not found")

// Catalog is an in-memory set of base documents keyed by ID.
type Catalog struct {
	mu   sync.RWMutex
	docs map[string]*BaseDocument
}

// NewCatalog creates a catalog holding docs.
func NewCatalog(docs ...*BaseDocument) (*Catalog, error) {
	c := &Catalog{docs: make(map[string]*BaseDocument)}
	for _, d := range docs {
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add validates d and stores it. Adding an ID twice replaces the earlier
// document.
func (c *Catalog) Add(d *BaseDocument) error {
	if err := Validate(d); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[d.ID] = d
	return nil
}

// Get returns the document with the given ID.
func (c *Catalog) Get(id string) (*BaseDocument, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return d, nil
}

// IDs returns the stored document IDs in sorted order.
func (c *Catalog) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.docs))
	for id := range c.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of documents.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// LoadCatalogDir loads every .json, .yaml, .yml and .toml file in dir.
// Subdirectories are not visited.
func LoadCatalogDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir %q: %w", dir, err)
	}

	c := &Catalog{docs: make(map[string]*BaseDocument)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := FormatFromPath(path); err != nil {
			continue
		}
		d, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := c.Add(d); err != nil {
			return nil, fmt.Errorf("add %q: %w", path, err)
		}
	}
	return c, nil
}
