// Package inference forward-chains a fixed rule set over a species table.
package inference

import (
	"sort"

	"github.com/abelbrown/eses/internal/dataset"
)

// Facts is the working memory of one inference run: at most one value per
// key, written once. Not safe for concurrent use; each run owns its own.
type Facts struct {
	values map[dataset.Field]string
	order  []dataset.Field
}

// NewFacts returns an empty fact store.
func NewFacts() *Facts {
	return &Facts{values: make(map[dataset.Field]string)}
}

// FactsFrom seeds a fact store from a map. Column keys are inserted in
// canonical column order, any others after them in lexical order.
func FactsFrom(m map[dataset.Field]string) *Facts {
	f := NewFacts()
	for _, col := range dataset.Columns {
		if v, ok := m[col]; ok {
			f.Set(col, v)
		}
	}
	var rest []dataset.Field
	for k := range m {
		if !k.IsColumn() {
			rest = append(rest, k)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, k := range rest {
		f.Set(k, m[k])
	}
	return f
}

// Get returns the value for key and whether it is known.
func (f *Facts) Get(key dataset.Field) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Has reports whether key is known.
func (f *Facts) Has(key dataset.Field) bool {
	_, ok := f.values[key]
	return ok
}

// Set records key=value unless key is already known. Returns true when the
// fact is new. An existing value is never overwritten.
func (f *Facts) Set(key dataset.Field, value string) bool {
	if _, ok := f.values[key]; ok {
		return false
	}
	f.values[key] = value
	f.order = append(f.order, key)
	return true
}

// Len returns the number of known facts.
func (f *Facts) Len() int {
	return len(f.values)
}

// Keys returns the known keys in the order they were learned.
func (f *Facts) Keys() []dataset.Field {
	out := make([]dataset.Field, len(f.order))
	copy(out, f.order)
	return out
}

// Map returns a copy of all facts.
func (f *Facts) Map() map[dataset.Field]string {
	m := make(map[dataset.Field]string, len(f.values))
	for k, v := range f.values {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy.
func (f *Facts) Clone() *Facts {
	c := &Facts{
		values: make(map[dataset.Field]string, len(f.values)),
		order:  make([]dataset.Field, len(f.order)),
	}
	for k, v := range f.values {
		c.values[k] = v
	}
	copy(c.order, f.order)
	return c
}
