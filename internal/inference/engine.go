package inference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abelbrown/eses/internal/dataset"
)

// Firing records one rule application that wrote at least one new fact.
type Firing struct {
	Rule    string
	Pass    int
	Row     int             // dataset row the values came from
	Derived []dataset.Field // keys newly written, in rule order
}

func (f Firing) String() string {
	return fmt.Sprintf("pass %d: %s (row %d) -> %s", f.Pass, f.Rule, f.Row, joinFields(f.Derived))
}

// Result is the outcome of one run.
type Result struct {
	Facts   *Facts
	Firings []Firing
	Passes  int // passes executed, including the final no-change pass
	Lookups int // table scans performed
}

// Engine applies a rule set to a read-only lookup until a fixed point.
// An Engine holds no per-run state and is safe for concurrent use.
type Engine struct {
	lookup dataset.Lookup
	rules  []Rule
}

// Option configures an Engine.
type Option func(*Engine)

// WithRules replaces the default rule set. Order is evaluation order.
func WithRules(rules ...Rule) Option {
	return func(e *Engine) {
		e.rules = append([]Rule(nil), rules...)
	}
}

// New creates an engine over lookup using DefaultRules unless overridden.
func New(lookup dataset.Lookup, opts ...Option) *Engine {
	e := &Engine{lookup: lookup, rules: DefaultRules()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns a copy of the engine's rule set.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

type lookupResult struct {
	rec   dataset.Record
	found bool
}

// Run forward-chains from seed and returns the facts at fixed point.
// seed is not modified.
//
// Each pass visits every rule once in order. A rule is evaluated the first
// time all its required keys are known; since facts are keep-first its
// inputs can never change afterwards, so it is never evaluated again.
// Rules with identical criteria in the same pass share one lookup.
func (e *Engine) Run(seed *Facts) Result {
	facts := NewFacts()
	if seed != nil {
		facts = seed.Clone()
	}
	res := Result{Facts: facts}

	settled := make([]bool, len(e.rules))
	maxPasses := len(e.rules) + 1

	for pass := 1; pass <= maxPasses; pass++ {
		res.Passes = pass
		lookups := make(map[string]lookupResult)
		changed := false

		for i, r := range e.rules {
			if settled[i] || !r.Ready(facts) {
				continue
			}
			settled[i] = true

			c := r.criteria(facts)
			key := criteriaKey(c)
			lr, ok := lookups[key]
			if !ok {
				lr.rec, lr.found = e.lookup.FindFirst(c)
				lookups[key] = lr
				res.Lookups++
			}
			if !lr.found {
				continue
			}

			var derived []dataset.Field
			for _, k := range r.Produces {
				v := lr.rec.Value(k)
				if v == "" {
					continue // blank cell
				}
				if facts.Set(k, v) {
					derived = append(derived, k)
				}
			}
			if len(derived) == 0 {
				continue
			}
			changed = true
			res.Firings = append(res.Firings, Firing{
				Rule:    r.Name,
				Pass:    pass,
				Row:     lr.rec.Row(),
				Derived: derived,
			})
		}

		if !changed {
			break
		}
	}
	return res
}

// criteriaKey canonicalises criteria so equal lookups share a cache slot.
func criteriaKey(c dataset.Criteria) string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte(0)
		b.WriteString(c[dataset.Field(k)])
		b.WriteByte(0)
	}
	return b.String()
}
