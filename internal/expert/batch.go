package expert

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ReadQueries parses habitat,diet,offsprings,lifespan lines. A first line
// whose first cell is "habitat" is treated as a header and skipped. Each
// Query carries the line its record started on.
func ReadQueries(r io.Reader) ([]Query, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var out []Query
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read queries: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(rec[0]), "habitat") {
			continue
		}
		out = append(out, Query{
			Habitat:    strings.TrimSpace(rec[0]),
			Diet:       strings.TrimSpace(rec[1]),
			Offsprings: strings.TrimSpace(rec[2]),
			Lifespan:   strings.TrimSpace(rec[3]),
			Line:       line,
		})
	}
	return out, nil
}

// ConsultAll runs every query with at most workers in flight and returns
// outcomes in input order. It stops early only when ctx is cancelled.
func (s *Service) ConsultAll(ctx context.Context, queries []Query, workers int) ([]Outcome, error) {
	if workers <= 0 {
		workers = 1
	}
	out := make([]Outcome, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = s.Consult(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
