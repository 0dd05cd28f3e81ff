package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/store"
)

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dataset statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.OutOrStdout())
		},
	}
}

func (c *cli) runStats(w io.Writer) error {
	tbl, err := expert.LoadTable(c.cfg.Dataset)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	fmt.Fprintf(w, "source:   %s\n", tbl.Source())
	fmt.Fprintf(w, "rows:     %d\n", tbl.Len())

	if expert.IsDatabase(c.cfg.Dataset) {
		st, err := store.Open(c.cfg.Dataset)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()
		meta, err := st.Meta()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "imported: %s from %s\n", meta.ImportedAt.Local().Format(time.DateTime), meta.Source)
	}

	fmt.Fprintln(w)
	for _, f := range []dataset.Field{dataset.Habitat, dataset.Diet, dataset.ConservationStatus} {
		counts := make(map[string]int)
		for _, r := range tbl.Records() {
			counts[r.Value(f)]++
		}
		values := tbl.Distinct(f)
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("%s (%d)", v, counts[v])
		}
		fmt.Fprintf(w, "%s: %d distinct\n  %s\n", f, len(values), strings.Join(parts, ", "))
	}
	return nil
}
