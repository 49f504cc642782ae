package scoringdomain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	criteriadomain "github.com/Black-And-White-Club/campscore/app/modules/criteria/domain"
)

// Node is one element of a score tree: either a numeric leaf or a group of
// named children.
type Node struct {
	value    float64
	children map[string]Node
	group    bool
}

// Leaf builds a numeric node.
func Leaf(v float64) Node {
	return Node{value: v}
}

// Group builds a node holding named children.
func Group(children map[string]Node) Node {
	if children == nil {
		children = map[string]Node{}
	}
	return Node{children: children, group: true}
}

// IsLeaf reports whether the node carries a value.
func (n Node) IsLeaf() bool { return !n.group }

// Value returns the leaf value, or 0 for groups.
func (n Node) Value() float64 { return n.value }

// Children returns the children of a group node.
func (n Node) Children() map[string]Node { return n.children }

func (n Node) clone() Node {
	if !n.group {
		return n
	}
	children := make(map[string]Node, len(n.children))
	for k, child := range n.children {
		children[k] = child.clone()
	}
	return Group(children)
}

// MarshalJSON encodes leaves as numbers and groups as objects.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.group {
		return json.Marshal(n.children)
	}
	return json.Marshal(n.value)
}

// UnmarshalJSON accepts a number or an object.
func (n *Node) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var children map[string]Node
		if err := json.Unmarshal(data, &children); err != nil {
			return err
		}
		*n = Group(children)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("score value must be a number: %w", err)
	}
	*n = Leaf(v)
	return nil
}

// Tree maps category name to its node. It mirrors the catalog shape:
// category -> key -> value or category -> key -> subKey -> value.
type Tree map[string]Node

// LeafValue is one flattened leaf of a tree.
type LeafValue struct {
	Path  criteriadomain.Path
	Value float64
}

// Change records one leaf that differs between two trees.
type Change struct {
	Path    criteriadomain.Path
	Old     float64
	New     float64
	Existed bool
}

// Difference is New minus Old.
func (c Change) Difference() float64 { return c.New - c.Old }

// Clone returns a deep copy.
func (t Tree) Clone() Tree {
	out := make(Tree, len(t))
	for k, n := range t {
		out[k] = n.clone()
	}
	return out
}

// IsEmpty reports whether the tree holds no leaves at all.
func (t Tree) IsEmpty() bool {
	return len(t.Leaves()) == 0
}

// Get returns the leaf at p.
func (t Tree) Get(p criteriadomain.Path) (float64, bool) {
	cat, ok := t[p.Category]
	if !ok || cat.IsLeaf() {
		return 0, false
	}
	item, ok := cat.children[p.Key]
	if !ok {
		return 0, false
	}
	if p.SubKey == "" {
		if !item.IsLeaf() {
			return 0, false
		}
		return item.value, true
	}
	if item.IsLeaf() {
		return 0, false
	}
	sub, ok := item.children[p.SubKey]
	if !ok || !sub.IsLeaf() {
		return 0, false
	}
	return sub.value, true
}

// Set writes v at p, creating intermediate groups and replacing any leaf
// that sits where a group is needed.
func (t Tree) Set(p criteriadomain.Path, v float64) {
	cat, ok := t[p.Category]
	if !ok || cat.IsLeaf() {
		cat = Group(nil)
		t[p.Category] = cat
	}
	if p.SubKey == "" {
		cat.children[p.Key] = Leaf(v)
		return
	}
	item, ok := cat.children[p.Key]
	if !ok || item.IsLeaf() {
		item = Group(nil)
		cat.children[p.Key] = item
	}
	item.children[p.SubKey] = Leaf(v)
}

// Leaves flattens the tree in path order. Leaves nested deeper than a sub key
// are ignored.
func (t Tree) Leaves() []LeafValue {
	var out []LeafValue
	for catName, cat := range t {
		if cat.IsLeaf() {
			continue
		}
		for key, item := range cat.children {
			if item.IsLeaf() {
				out = append(out, LeafValue{Path: criteriadomain.Path{Category: catName, Key: key}, Value: item.value})
				continue
			}
			for sub, leaf := range item.children {
				if !leaf.IsLeaf() {
					continue
				}
				out = append(out, LeafValue{
					Path:  criteriadomain.Path{Category: catName, Key: key, SubKey: sub},
					Value: leaf.value,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Path.String() < out[j].Path.String()
	})
	return out
}

// Merge overlays every leaf of patch onto a copy of t. Leaves absent from the
// patch are left untouched. The returned changes only list leaves whose value
// differs from before; a missing leaf reads as zero.
func (t Tree) Merge(patch Tree) (Tree, []Change) {
	merged := t.Clone()
	var changes []Change
	for _, lv := range patch.Leaves() {
		old, existed := merged.Get(lv.Path)
		merged.Set(lv.Path, lv.Value)
		if old == lv.Value {
			continue
		}
		changes = append(changes, Change{Path: lv.Path, Old: old, New: lv.Value, Existed: existed})
	}
	return merged, changes
}

// ShapeError reports a tree position that does not fit the catalog shape or a
// leaf that is not a finite number.
type ShapeError struct {
	Path   criteriadomain.Path
	Value  float64
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

// Validate checks the tree shape and that every leaf is a finite number.
// Categories must be groups, and a key is either a leaf or a group of leaves.
// Leaves skips anything else, so callers validate before reading leaves.
func (t Tree) Validate() error {
	cats := make([]string, 0, len(t))
	for name := range t {
		cats = append(cats, name)
	}
	sort.Strings(cats)
	for _, catName := range cats {
		cat := t[catName]
		if cat.IsLeaf() {
			return &ShapeError{Path: criteriadomain.Path{Category: catName}, Value: cat.value, Reason: "category must hold named scores, not a number"}
		}
		for _, key := range sortedKeys(cat.children) {
			item := cat.children[key]
			p := criteriadomain.Path{Category: catName, Key: key}
			if item.IsLeaf() {
				if err := checkFinite(p, item.value); err != nil {
					return err
				}
				continue
			}
			for _, sub := range sortedKeys(item.children) {
				leaf := item.children[sub]
				sp := criteriadomain.Path{Category: catName, Key: key, SubKey: sub}
				if !leaf.IsLeaf() {
					return &ShapeError{Path: sp, Reason: "scores nest at most one level below a criterion"}
				}
				if err := checkFinite(sp, leaf.value); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkFinite(p criteriadomain.Path, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ShapeError{Path: p, Value: v, Reason: "value is not a finite number"}
	}
	return nil
}

func sortedKeys(m map[string]Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ZeroTree builds a full-shape tree with every leaf at zero.
func ZeroTree(catalog *criteriadomain.Catalog) Tree {
	t := Tree{}
	for _, c := range catalog.Criteria() {
		t.Set(c.Path, 0)
	}
	return t
}

// MaxTree builds a full-shape tree with every additive leaf at its maximum and
// every demerit at zero.
func MaxTree(catalog *criteriadomain.Catalog) Tree {
	t := Tree{}
	for _, c := range catalog.Criteria() {
		if c.IsDemerit() {
			t.Set(c.Path, 0)
			continue
		}
		t.Set(c.Path, c.Max)
	}
	return t
}
