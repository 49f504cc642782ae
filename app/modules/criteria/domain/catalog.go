package criteriadomain

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// ErrInvalidCatalog is returned when a catalog fails validation.
var ErrInvalidCatalog = errors.New("invalid criteria catalog")

// Kind distinguishes point-earning categories from penalty categories.
type Kind string

const (
	KindAdditive Kind = "additive"
	KindDemerit  Kind = "demerit"
)

// Bounds holds the scoring limits of a single scorable item.
type Bounds struct {
	Max         float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Partial     float64 `json:"partial,omitempty" yaml:"partial,omitempty"`
	Penalty     float64 `json:"penalty,omitempty" yaml:"penalty,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
}

// Item is either a leaf (the embedded Bounds) or a group of sub items.
type Item struct {
	Bounds   `yaml:",inline"`
	SubItems map[string]Bounds `json:"subItems,omitempty" yaml:"sub_items,omitempty"`
}

// IsGroup reports whether the item nests sub keys.
func (i Item) IsGroup() bool {
	return len(i.SubItems) > 0
}

// Category groups items that share a scoring kind.
type Category struct {
	Kind        Kind            `json:"kind" yaml:"kind"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Items       map[string]Item `json:"items" yaml:"items"`
}

// Catalog is the full tree of scorable criteria.
type Catalog struct {
	Version    int                 `json:"version" yaml:"version"`
	Categories map[string]Category `json:"categories" yaml:"categories"`
}

// Path addresses one leaf of the catalog or of a score tree.
type Path struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	SubKey   string `json:"subKey,omitempty"`
}

// String renders the path as "category.key[.subKey]".
func (p Path) String() string {
	if p.SubKey == "" {
		return p.Category + "." + p.Key
	}
	return p.Category + "." + p.Key + "." + p.SubKey
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	parts := strings.Split(s, ".")
	for _, part := range parts {
		if part == "" {
			return Path{}, fmt.Errorf("malformed criterion path %q", s)
		}
	}
	switch len(parts) {
	case 2:
		return Path{Category: parts[0], Key: parts[1]}, nil
	case 3:
		return Path{Category: parts[0], Key: parts[1], SubKey: parts[2]}, nil
	default:
		return Path{}, fmt.Errorf("malformed criterion path %q", s)
	}
}

// Criterion is the flattened view of one catalog leaf.
type Criterion struct {
	Path
	Kind        Kind
	Max         float64
	Partial     float64
	Penalty     float64
	Description string
}

// IsDemerit reports whether the criterion is penalty based.
func (c Criterion) IsDemerit() bool {
	return c.Kind == KindDemerit
}

// IsDemerit reports whether the named category is penalty based.
func (c *Catalog) IsDemerit(category string) bool {
	if c == nil {
		return false
	}
	cat, ok := c.Categories[category]
	return ok && cat.Kind == KindDemerit
}

// Lookup resolves a path to its criterion. A group item only resolves with a
// sub key and a leaf item only without one.
func (c *Catalog) Lookup(p Path) (Criterion, bool) {
	if c == nil {
		return Criterion{}, false
	}
	cat, ok := c.Categories[p.Category]
	if !ok {
		return Criterion{}, false
	}
	item, ok := cat.Items[p.Key]
	if !ok {
		return Criterion{}, false
	}

	b := item.Bounds
	if item.IsGroup() {
		if p.SubKey == "" {
			return Criterion{}, false
		}
		sub, ok := item.SubItems[p.SubKey]
		if !ok {
			return Criterion{}, false
		}
		b = sub
	} else if p.SubKey != "" {
		return Criterion{}, false
	}

	return Criterion{
		Path:        p,
		Kind:        cat.Kind,
		Max:         b.Max,
		Partial:     b.Partial,
		Penalty:     math.Abs(b.Penalty),
		Description: b.Description,
	}, true
}

// Criteria lists every leaf sorted by path.
func (c *Catalog) Criteria() []Criterion {
	if c == nil {
		return nil
	}
	var out []Criterion
	for catName, cat := range c.Categories {
		for key, item := range cat.Items {
			if !item.IsGroup() {
				crit, _ := c.Lookup(Path{Category: catName, Key: key})
				out = append(out, crit)
				continue
			}
			for sub := range item.SubItems {
				crit, _ := c.Lookup(Path{Category: catName, Key: key, SubKey: sub})
				out = append(out, crit)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path.String() < out[j].Path.String()
	})
	return out
}

// Validate checks the structural and numeric invariants of the catalog.
func (c *Catalog) Validate() error {
	if c == nil || len(c.Categories) == 0 {
		return fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}
	for catName, cat := range c.Categories {
		if catName == "" || strings.Contains(catName, ".") {
			return fmt.Errorf("%w: bad category name %q", ErrInvalidCatalog, catName)
		}
		if cat.Kind != KindAdditive && cat.Kind != KindDemerit {
			return fmt.Errorf("%w: category %q has unknown kind %q", ErrInvalidCatalog, catName, cat.Kind)
		}
		if len(cat.Items) == 0 {
			return fmt.Errorf("%w: category %q has no items", ErrInvalidCatalog, catName)
		}
		for key, item := range cat.Items {
			if key == "" || strings.Contains(key, ".") {
				return fmt.Errorf("%w: bad key %q in %q", ErrInvalidCatalog, key, catName)
			}
			if !item.IsGroup() {
				if err := validateBounds(cat.Kind, Path{Category: catName, Key: key}, item.Bounds); err != nil {
					return err
				}
				continue
			}
			for sub, b := range item.SubItems {
				if sub == "" || strings.Contains(sub, ".") {
					return fmt.Errorf("%w: bad sub key %q in %s.%s", ErrInvalidCatalog, sub, catName, key)
				}
				if err := validateBounds(cat.Kind, Path{Category: catName, Key: key, SubKey: sub}, b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateBounds(kind Kind, p Path, b Bounds) error {
	if kind == KindDemerit {
		if b.Penalty == 0 {
			return fmt.Errorf("%w: demerit %s has no penalty", ErrInvalidCatalog, p)
		}
		return nil
	}
	if b.Max <= 0 {
		return fmt.Errorf("%w: %s must have a positive max", ErrInvalidCatalog, p)
	}
	if b.Partial < 0 || b.Partial > b.Max {
		return fmt.Errorf("%w: %s partial %v outside [0, %v]", ErrInvalidCatalog, p, b.Partial, b.Max)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Catalog) Clone() *Catalog {
	if c == nil {
		return nil
	}
	out := &Catalog{Version: c.Version, Categories: make(map[string]Category, len(c.Categories))}
	for name, cat := range c.Categories {
		items := make(map[string]Item, len(cat.Items))
		for key, item := range cat.Items {
			cp := Item{Bounds: item.Bounds}
			if item.IsGroup() {
				cp.SubItems = make(map[string]Bounds, len(item.SubItems))
				for sub, b := range item.SubItems {
					cp.SubItems[sub] = b
				}
			}
			items[key] = cp
		}
		out.Categories[name] = Category{Kind: cat.Kind, Description: cat.Description, Items: items}
	}
	return out
}
