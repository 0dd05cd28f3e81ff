package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/report"
)

func (c *cli) batchCmd() *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Evaluate a CSV of habitat,diet,offsprings,lifespan queries",
		Long: `Reads one query per line (an optional header line is skipped, "-"
reads stdin) and writes one JSON object per query, in input order.
Each object's "line" is the input line the query was read from.
Queries run concurrently against the shared read-only table.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if workers <= 0 {
				workers = c.cfg.Workers
			}
			return c.runBatch(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], workers)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent evaluations (default from config)")
	return cmd
}

// batchLine is one output line of `eses batch`.
type batchLine struct {
	Line       int           `json:"line"`
	Run        string        `json:"run"`
	Query      expert.Query  `json:"query"`
	Identified bool          `json:"identified"`
	Report     report.Report `json:"report"`
}

func (c *cli) runBatch(ctx context.Context, stdin io.Reader, w io.Writer, path string, workers int) error {
	in := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open queries: %w", err)
		}
		defer f.Close()
		in = f
	}

	queries, err := expert.ReadQueries(in)
	if err != nil {
		return err
	}

	events, closeEvents, err := c.openEventLog()
	if err != nil {
		return err
	}
	defer closeEvents()

	svc, err := c.newService(events)
	if err != nil {
		return err
	}

	outcomes, err := svc.ConsultAll(ctx, queries, workers)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, out := range outcomes {
		if err := enc.Encode(batchLine{
			Line:       out.Query.Line,
			Run:        out.RunID,
			Query:      out.Query,
			Identified: out.Identified(),
			Report:     out.Report,
		}); err != nil {
			return err
		}
	}
	return nil
}
