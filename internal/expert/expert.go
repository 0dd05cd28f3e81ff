// Package expert wires the dataset, the inference engine and the report
// into a single consultation: four answers in, an ordered species report out.
package expert

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/inference"
	"github.com/abelbrown/eses/internal/otel"
	"github.com/abelbrown/eses/internal/report"
)

// Query is what the user tells the system about an animal.
type Query struct {
	Habitat    string `json:"habitat"`
	Diet       string `json:"diet"`
	Offsprings string `json:"offsprings"`
	Lifespan   string `json:"lifespan"`

	// Line is the input line a batch query was read from, 0 otherwise.
	Line int `json:"-"`
}

// Seed returns the initial facts. All four keys are always present, empty
// or not; an empty answer never matches a row.
func (q Query) Seed() *inference.Facts {
	f := inference.NewFacts()
	f.Set(dataset.Habitat, strings.TrimSpace(q.Habitat))
	f.Set(dataset.Diet, strings.TrimSpace(q.Diet))
	f.Set(dataset.Offsprings, strings.TrimSpace(q.Offsprings))
	f.Set(dataset.Lifespan, strings.TrimSpace(q.Lifespan))
	return f
}

func (q Query) String() string {
	return fmt.Sprintf("habitat=%q diet=%q offsprings=%q lifespan=%q",
		q.Habitat, q.Diet, q.Offsprings, q.Lifespan)
}

// Outcome is the result of one consultation.
type Outcome struct {
	RunID  string
	Query  Query
	Result inference.Result
	Report report.Report
	Dur    time.Duration
}

// Identified reports whether the run reached a species name.
func (o Outcome) Identified() bool {
	_, ok := o.Report.Get(dataset.Name)
	return ok
}

// Service answers queries against one read-only table.
// Safe for concurrent use.
type Service struct {
	table  *dataset.Table
	engine *inference.Engine
	events *otel.Logger // nil disables events
}

// NewService creates a service over table. events may be nil.
func NewService(table *dataset.Table, events *otel.Logger, opts ...inference.Option) *Service {
	s := &Service{
		table:  table,
		engine: inference.New(table, opts...),
		events: events,
	}
	s.emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindDatasetLoad,
		Comp:   "expert",
		Source: table.Source(),
		Count:  table.Len(),
	})
	return s
}

// Table returns the dataset the service consults.
func (s *Service) Table() *dataset.Table {
	return s.table
}

// Rules returns the rule set in evaluation order.
func (s *Service) Rules() []inference.Rule {
	return s.engine.Rules()
}

// Consult runs the rules to a fixed point from q and builds the report.
func (s *Service) Consult(q Query) Outcome {
	runID := uuid.NewString()
	start := time.Now()

	s.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindInferStart,
		Comp:  "expert",
		RunID: runID,
		Query: q.String(),
	})

	res := s.engine.Run(q.Seed())
	dur := time.Since(start)

	for _, f := range res.Firings {
		s.emit(otel.Event{
			Level:   otel.LevelDebug,
			Kind:    otel.KindRuleFire,
			Comp:    "expert",
			RunID:   runID,
			Rule:    f.Rule,
			Pass:    f.Pass,
			Row:     otel.RowPtr(f.Row),
			Derived: fieldNames(f.Derived),
		})
	}

	rep := report.Build(res.Facts)
	name, _ := rep.Get(dataset.Name)
	s.emit(otel.Event{
		Level: otel.LevelInfo,
		Kind:  otel.KindInferComplete,
		Comp:  "expert",
		RunID: runID,
		Pass:  res.Passes,
		Count: res.Facts.Len(),
		Dur:   dur,
		Msg:   name,
		Extra: map[string]any{
			"firings": len(res.Firings),
			"lookups": res.Lookups,
		},
	})

	return Outcome{
		RunID:  runID,
		Query:  q,
		Result: res,
		Report: rep,
		Dur:    dur,
	}
}

func (s *Service) emit(e otel.Event) {
	if s.events != nil {
		s.events.Emit(e)
	}
}

func fieldNames(fs []dataset.Field) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}
