package inference

import (
	"strings"

	"github.com/abelbrown/eses/internal/dataset"
)

// Rule derives Produces from the first dataset row whose values equal the
// current facts for every key in Requires.
type Rule struct {
	Name     string
	Requires []dataset.Field
	Produces []dataset.Field
}

// Ready reports whether every required key is known.
func (r Rule) Ready(f *Facts) bool {
	for _, k := range r.Requires {
		if !f.Has(k) {
			return false
		}
	}
	return true
}

// criteria builds the lookup for r from the current facts.
// Only meaningful when Ready(f) is true.
func (r Rule) criteria(f *Facts) dataset.Criteria {
	c := make(dataset.Criteria, len(r.Requires))
	for _, k := range r.Requires {
		c[k], _ = f.Get(k)
	}
	return c
}

// String renders the rule as "habitat, diet -> population".
func (r Rule) String() string {
	return joinFields(r.Requires) + " -> " + joinFields(r.Produces)
}

func joinFields(fs []dataset.Field) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// DefaultRules returns the six species rules in evaluation order.
//
// The population/lifespan rules share a trigger set; the engine answers
// both from one lookup per pass.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "habitat_diet_population",
			Requires: []dataset.Field{dataset.Habitat, dataset.Diet},
			Produces: []dataset.Field{dataset.Population},
		},
		{
			Name:     "population_lifespan_threats",
			Requires: []dataset.Field{dataset.Population, dataset.Lifespan},
			Produces: []dataset.Field{dataset.Threats},
		},
		{
			Name:     "habitat_offsprings_physical_description",
			Requires: []dataset.Field{dataset.Habitat, dataset.Offsprings},
			Produces: []dataset.Field{dataset.PhysicalDescription},
		},
		{
			Name:     "population_lifespan_conservation_status",
			Requires: []dataset.Field{dataset.Population, dataset.Lifespan},
			Produces: []dataset.Field{dataset.ConservationStatus},
		},
		{
			Name:     "habitat_diet_lifespan_name",
			Requires: []dataset.Field{dataset.Habitat, dataset.Diet, dataset.Lifespan},
			Produces: []dataset.Field{dataset.Name},
		},
		{
			Name:     "name_all_features",
			Requires: []dataset.Field{dataset.Name},
			Produces: []dataset.Field{
				dataset.ScientificName,
				dataset.ConservationStatus,
				dataset.Population,
				dataset.Warning,
				dataset.Recommendation,
				dataset.PhysicalDescription,
			},
		},
	}
}
