// Package catalog holds the fixed mapping from AQI category names to their
// representative midpoint values and health recommendations.
//
// A Catalog is immutable once constructed and safe for concurrent use. Lookups
// hand out copies of the recommendation lists so callers cannot alter it.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/menta2k/aqi-analyzer/pkg/types"
)

// ErrInvalidCatalog is returned by New when an entry breaks a catalog invariant
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog maps category names to their CategoryInfo
type Catalog struct {
	entries []types.CategoryInfo
	index   map[string]int
}

// New builds a Catalog from entries, keeping their order
func New(entries []types.CategoryInfo) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	c := &Catalog{
		entries: make([]types.CategoryInfo, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidCatalog, i)
		}
		if _, dup := c.index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidCatalog, name)
		}
		if !(e.Midpoint > 0) || math.IsInf(e.Midpoint, 0) {
			return nil, fmt.Errorf("%w: category %q midpoint must be positive and finite, got %v", ErrInvalidCatalog, name, e.Midpoint)
		}

		recs := make([]string, 0, len(e.Recommendations))
		for _, r := range e.Recommendations {
			if r = strings.TrimSpace(r); r != "" {
				recs = append(recs, r)
			}
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("%w: category %q has no recommendations", ErrInvalidCatalog, name)
		}

		c.index[name] = len(c.entries)
		c.entries = append(c.entries, types.CategoryInfo{
			Name:            name,
			Midpoint:        e.Midpoint,
			Recommendations: recs,
		})
	}

	return c, nil
}

// Lookup returns the entry for name. The boolean is false when name is unknown.
func (c *Catalog) Lookup(name string) (types.CategoryInfo, bool) {
	i, ok := c.index[name]
	if !ok {
		return types.CategoryInfo{}, false
	}
	return clone(c.entries[i]), true
}

// Canonical resolves name case-insensitively to its catalog spelling
func (c *Catalog) Canonical(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if _, ok := c.index[name]; ok {
		return name, true
	}
	for _, e := range c.entries {
		if strings.EqualFold(e.Name, name) {
			return e.Name, true
		}
	}
	return "", false
}

// Names returns category names in declaration order
func (c *Catalog) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of all entries in declaration order
func (c *Catalog) Entries() []types.CategoryInfo {
	out := make([]types.CategoryInfo, len(c.entries))
	for i, e := range c.entries {
		out[i] = clone(e)
	}
	return out
}

// Len returns the number of categories
func (c *Catalog) Len() int {
	return len(c.entries)
}

func clone(e types.CategoryInfo) types.CategoryInfo {
	e.Recommendations = append([]string(nil), e.Recommendations...)
	return e
}
