// Package dataset loads the species knowledge base and answers first-match
// lookups against it.
//
// A Table is read once and never mutated afterwards, so a single *Table can
// be shared by any number of concurrent evaluations.
package dataset

import "strings"

// Field names a dataset column. Facts use the same names as keys.
type Field string

const (
	Habitat             Field = "habitat"
	Diet                Field = "diet"
	Offsprings          Field = "offsprings"
	Lifespan            Field = "lifespan"
	Population          Field = "population"
	Threats             Field = "threats"
	ConservationStatus  Field = "conservation_status"
	Name                Field = "name"
	ScientificName      Field = "scientific_name"
	PhysicalDescription Field = "physical_description"
	Warning             Field = "warning"
	Recommendation      Field = "recommendation_to_save"

	// Display-only keys. No column carries them, but a caller may seed them.
	HabitatType       Field = "habitat_type"
	EndangeredFactors Field = "endangered_factors"
)

// numColumns is len(Columns). Record stores its values in a fixed array.
const numColumns = 12

// Columns lists every column a dataset must carry, in canonical order.
var Columns = [numColumns]Field{
	Habitat,
	Diet,
	Offsprings,
	Lifespan,
	Population,
	Threats,
	ConservationStatus,
	Name,
	ScientificName,
	PhysicalDescription,
	Warning,
	Recommendation,
}

// aliases maps alternative header spellings to their canonical field.
// Older knowledge base files label the offspring column "Offspring".
var aliases = map[string]Field{
	"offspring":       Offsprings,
	"offspring_count": Offsprings,
	"recommendation":  Recommendation,
}

var columnPos = func() map[Field]int {
	m := make(map[Field]int, numColumns)
	for i, f := range Columns {
		m[f] = i
	}
	return m
}()

// ParseField normalises a header cell and resolves it to a column.
// Headers are trimmed, lower-cased, and spaces or hyphens become underscores.
func ParseField(header string) (Field, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	if f, ok := aliases[h]; ok {
		return f, true
	}
	f := Field(h)
	if _, ok := columnPos[f]; ok {
		return f, true
	}
	return "", false
}

// IsColumn reports whether f is backed by a dataset column.
func (f Field) IsColumn() bool {
	_, ok := columnPos[f]
	return ok
}

func (f Field) String() string {
	return string(f)
}
