// Package props implements the parent-chained key/value bags that carry job
// and flow configuration.
package props

import (
	"sort"
	"strconv"
	"strings"
)

// Props is a string key/value bag. Lookups fall back to the parent chain
// when a key is not set locally; a local value shadows the parent's.
type Props struct {
	parent *Props
	source string
	keys   []string // local keys in insertion order
	values map[string]string
}

// New creates an empty bag chained to parent (which may be nil).
func New(parent *Props) *Props {
	return &Props{
		parent: parent,
		values: make(map[string]string),
	}
}

// FromMap creates a bag holding a copy of m. Keys are inserted in sorted
// order so the bag is deterministic.
func FromMap(parent *Props, m map[string]string) *Props {
	p := New(parent)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p.Put(k, m[k])
	}
	return p
}

// Parent returns the parent bag, or nil.
func (p *Props) Parent() *Props {
	return p.parent
}

// Source returns the label of where the bag was loaded from.
func (p *Props) Source() string {
	return p.source
}

// SetSource sets the source label.
func (p *Props) SetSource(source string) {
	p.source = source
}

// Put sets key locally. The parent is never modified.
func (p *Props) Put(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get looks key up locally, then along the parent chain.
func (p *Props) Get(key string) (string, bool) {
	for cur := p; cur != nil; cur = cur.parent {
		if v, ok := cur.values[key]; ok {
			return v, true
		}
	}
	return "", false
}

// ContainsKey reports whether key is visible from this bag.
func (p *Props) ContainsKey(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// GetString returns the value of key, or def when it is absent.
func (p *Props) GetString(key, def string) string {
	if v, ok := p.Get(key); ok {
		return v
	}
	return def
}

// GetStringList splits a comma separated value. Entries are trimmed and
// empty entries dropped.
func (p *Props) GetStringList(key string) []string {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetBool parses key as a boolean, returning def when it is absent or
// malformed.
func (p *Props) GetBool(key string, def bool) bool {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// LocalKeys returns the keys set directly on this bag, in insertion order.
func (p *Props) LocalKeys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Keys returns every key visible from this bag, sorted.
func (p *Props) Keys() []string {
	m := p.ToMap()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of local keys.
func (p *Props) Len() int {
	return len(p.keys)
}

// ToMap flattens the chain into a single map. Values closer to this bag win.
func (p *Props) ToMap() map[string]string {
	var chain []*Props
	for cur := p; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	out := make(map[string]string)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].values {
			out[k] = v
		}
	}
	return out
}

// Clone copies the local values and source into a new bag sharing the same
// parent.
func (p *Props) Clone() *Props {
	c := New(p.parent)
	c.source = p.source
	for _, k := range p.keys {
		c.Put(k, p.values[k])
	}
	return c
}

// String renders the local values as key=value lines.
func (p *Props) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range p.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteString("=")
		sb.WriteString(p.values[k])
	}
	sb.WriteString("}")
	return sb.String()
}
