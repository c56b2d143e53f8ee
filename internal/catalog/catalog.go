package catalog

import (
	"sort"
	"sync/atomic"

	"github.com/hojanyaz/hr-psychobot/internal/models"
)

// Catalog is an immutable snapshot of the loaded survey definitions.
type Catalog struct {
	surveys map[string]*models.SurveyDefinition
	keys    []string
}

// NewCatalog builds a snapshot from validated definitions. Last one wins on
// key collision.
func NewCatalog(defs []*models.SurveyDefinition) *Catalog {
	c := &Catalog{surveys: make(map[string]*models.SurveyDefinition, len(defs))}
	for _, d := range defs {
		c.surveys[d.Key] = d
	}
	c.keys = make([]string, 0, len(c.surveys))
	for k := range c.surveys {
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	return c
}

// Get returns the definition for key, or nil.
func (c *Catalog) Get(key string) *models.SurveyDefinition {
	return c.surveys[key]
}

// Keys returns the survey keys in stable (sorted) order, for menus.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len reports the number of loaded surveys.
func (c *Catalog) Len() int { return len(c.surveys) }

// Store holds the current catalog behind an atomic pointer so a reload swaps
// the whole snapshot at once. Readers never observe a partially built catalog.
type Store struct {
	current atomic.Pointer[Catalog]
}

func NewStore() *Store {
	s := &Store{}
	s.current.Store(NewCatalog(nil))
	return s
}

// Current returns the live snapshot.
func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap replaces the live snapshot.
func (s *Store) Swap(c *Catalog) {
	s.current.Store(c)
}
