package entity

import (
	"slices"
	"sync"

	"github.com/udisondev/regionspawn/internal/spawn"
)

// Catalog lists the known species and their forms.
type Catalog struct {
	mu      sync.RWMutex
	species map[string][]string
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{species: make(map[string][]string)}
}

// NewCatalogFrom creates a catalog from a species → forms map.
func NewCatalogFrom(species map[string][]string) *Catalog {
	c := NewCatalog()
	for name, forms := range species {
		c.Register(name, forms...)
	}
	return c
}

// Register adds species with the given forms, merging with known forms.
func (c *Catalog) Register(species string, forms ...string) {
	id := spawn.NormalizeSpecies(species)
	if id == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	known := c.species[id]
	for _, f := range forms {
		if !slices.Contains(known, f) {
			known = append(known, f)
		}
	}
	if known == nil {
		known = []string{}
	}
	c.species[id] = known
}

// Forms returns the forms of species.
func (c *Catalog) Forms(species string) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	forms, ok := c.species[spawn.NormalizeSpecies(species)]
	if !ok {
		return nil, false
	}
	return slices.Clone(forms), true
}

// Len returns the number of species.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.species)
}
