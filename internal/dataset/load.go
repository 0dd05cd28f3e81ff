package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrEmpty is returned when a dataset has no header or no data rows.
	ErrEmpty = errors.New("dataset has no rows")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing column")

	// ErrDuplicateColumn is returned when two header cells resolve to the same field.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// LoadError describes why a dataset could not be loaded.
// Line is 1-based; 0 when the failure is not tied to a line.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// LoadFile reads a delimited dataset from disk. A .tsv extension forces tab
// delimiters; anything else is auto-detected from the header line.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer f.Close()

	var comma rune
	if strings.EqualFold(filepath.Ext(path), ".tsv") {
		comma = '\t'
	}
	return Load(f, path, comma)
}

// Load parses a delimited dataset. comma selects the delimiter; 0 means
// detect it from the header line. Cells are trimmed. Ragged rows, missing
// columns and empty input all fail.
func Load(r io.Reader, source string, comma rune) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	data = bytes.TrimPrefix(data, []byte("\ufeff"))

	if comma == 0 {
		comma = detectDelimiter(data)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = comma
	// Leading-space trimming would swallow empty tab-separated cells.
	cr.TrimLeadingSpace = comma != '\t'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &LoadError{Source: source, Err: ErrEmpty}
	}
	if err != nil {
		return nil, wrapParseError(source, err)
	}

	positions, err := mapHeader(header)
	if err != nil {
		return nil, &LoadError{Source: source, Line: 1, Err: err}
	}

	var records []Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapParseError(source, err)
		}

		var rec Record
		for col, p := range positions {
			rec.values[col] = strings.TrimSpace(row[p])
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, &LoadError{Source: source, Err: ErrEmpty}
	}
	return NewTable(source, records), nil
}

// mapHeader returns, for every canonical column, its index in the header.
// Unknown header cells are ignored.
func mapHeader(header []string) ([numColumns]int, error) {
	var pos [numColumns]int
	for i := range pos {
		pos[i] = -1
	}

	for i, cell := range header {
		f, ok := ParseField(cell)
		if !ok {
			continue
		}
		col := columnPos[f]
		if pos[col] >= 0 {
			return pos, fmt.Errorf("%w: %q", ErrDuplicateColumn, f)
		}
		pos[col] = i
	}

	var missing []string
	for col, p := range pos {
		if p < 0 {
			missing = append(missing, string(Columns[col]))
		}
	}
	if len(missing) > 0 {
		return pos, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return pos, nil
}

func wrapParseError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &LoadError{Source: source, Line: pe.Line, Err: pe.Err}
	}
	return &LoadError{Source: source, Err: err}
}

// detectDelimiter picks the most frequent of comma, semicolon and tab in
// the first line. Ties and no hits fall back to comma.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}

	best, bestCount := ',', bytes.Count(line, []byte{','})
	for _, c := range []rune{';', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}
