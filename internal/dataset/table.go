package dataset

// Record is one species row. Immutable once built.
type Record struct {
	row    int
	values [numColumns]string
}

// NewRecord builds a record from column values. Keys that are not columns
// are ignored; missing columns are empty.
func NewRecord(values map[Field]string) Record {
	var r Record
	for f, v := range values {
		if i, ok := columnPos[f]; ok {
			r.values[i] = v
		}
	}
	return r
}

// Row returns the zero-based position of the record in its table.
func (r Record) Row() int {
	return r.row
}

// Get returns the value of a column. ok is false when f is not a column.
func (r Record) Get(f Field) (value string, ok bool) {
	i, ok := columnPos[f]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// Value returns the value of a column, or "" when f is not a column.
func (r Record) Value(f Field) string {
	v, _ := r.Get(f)
	return v
}

// Map returns a copy of the record's values keyed by field.
func (r Record) Map() map[Field]string {
	m := make(map[Field]string, numColumns)
	for i, f := range Columns {
		m[f] = r.values[i]
	}
	return m
}

// Matches reports whether every criterion equals the record's value exactly.
// A criterion on a non-column field never matches, and neither does an
// empty criterion value or an empty cell.
func (r Record) Matches(c Criteria) bool {
	for f, want := range c {
		i, ok := columnPos[f]
		if !ok || want == "" || r.values[i] != want {
			return false
		}
	}
	return true
}

// Criteria is a set of exact-equality constraints keyed by field.
type Criteria map[Field]string

// Lookup is the only access pattern the inference engine needs.
type Lookup interface {
	FindFirst(c Criteria) (Record, bool)
}

// Table is an in-memory, read-only species dataset in its natural order.
type Table struct {
	source  string
	records []Record
}

var _ Lookup = (*Table)(nil)

// NewTable builds a table from records, renumbering rows in slice order.
// source is a human label (file path, "builtin", database path).
func NewTable(source string, records []Record) *Table {
	rs := make([]Record, len(records))
	for i, r := range records {
		r.row = i
		rs[i] = r
	}
	return &Table{source: source, records: rs}
}

// Source returns the label the table was loaded from.
func (t *Table) Source() string {
	return t.source
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.records)
}

// At returns row i. Panics if i is out of range.
func (t *Table) At(i int) Record {
	return t.records[i]
}

// Records returns a copy of all rows in natural order.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// FindFirst returns the first row, in natural order, that matches every
// criterion. Empty criteria match the first row.
func (t *Table) FindFirst(c Criteria) (Record, bool) {
	for _, r := range t.records {
		if r.Matches(c) {
			return r, true
		}
	}
	return Record{}, false
}

// Distinct returns the distinct non-empty values of a column in first-seen order.
func (t *Table) Distinct(f Field) []string {
	i, ok := columnPos[f]
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.records {
		v := r.values[i]
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
