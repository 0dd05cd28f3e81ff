// Package report orders the facts of a finished run for display.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/inference"
)

// Order is the fixed display order. Keys absent from a run are skipped.
var Order = []dataset.Field{
	dataset.Name,
	dataset.ScientificName,
	dataset.Habitat,
	dataset.ConservationStatus,
	dataset.Population,
	dataset.Threats,
	dataset.Diet,
	dataset.Offsprings,
	dataset.Lifespan,
	dataset.PhysicalDescription,
	dataset.HabitatType,
	dataset.EndangeredFactors,
	dataset.Warning,
	dataset.Recommendation,
}

// Line is one key/value pair of a report.
type Line struct {
	Key   dataset.Field
	Value string
}

// Report is the ordered view of a fact store.
type Report struct {
	Lines []Line
}

// Build selects the known keys of f in display order.
func Build(f *inference.Facts) Report {
	var r Report
	if f == nil {
		return r
	}
	for _, k := range Order {
		if v, ok := f.Get(k); ok {
			r.Lines = append(r.Lines, Line{Key: k, Value: v})
		}
	}
	return r
}

// Get returns the value reported for key.
func (r Report) Get(key dataset.Field) (string, bool) {
	for _, l := range r.Lines {
		if l.Key == key {
			return l.Value, true
		}
	}
	return "", false
}

// Len returns the number of lines.
func (r Report) Len() int {
	return len(r.Lines)
}

// Text renders "key: value" lines.
func (r Report) Text() string {
	var b strings.Builder
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "%s: %s\n", l.Key, l.Value)
	}
	return b.String()
}

// MarshalJSON encodes the report as one object with keys in display order.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, l := range r.Lines {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(string(l.Key))
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(l.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Markdown renders the report as a markdown document. The species name,
// when known, becomes the heading.
func (r Report) Markdown() string {
	var b strings.Builder
	title := "Unidentified species"
	if name, ok := r.Get(dataset.Name); ok && name != "" {
		title = name
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(r.Lines) == 0 {
		b.WriteString("_No facts were inferred._\n")
		return b.String()
	}
	for _, l := range r.Lines {
		fmt.Fprintf(&b, "- **%s**: %s\n", l.Key, l.Value)
	}
	return b.String()
}

// RenderMarkdown renders Markdown for a terminal using a glamour style
// ("auto", "dark", "light", "notty", ...), wrapping at width.
func (r Report) RenderMarkdown(style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("markdown renderer: %w", err)
	}
	out, err := tr.Render(r.Markdown())
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
