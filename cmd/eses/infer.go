package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/report"
)

type inferOptions struct {
	query  expert.Query
	format string
	trace  bool
}

func (c *cli) inferCmd() *cobra.Command {
	var opts inferOptions

	cmd := &cobra.Command{
		Use:   "infer",
		Short: "Identify a species from habitat, diet, offspring count and lifespan",
		Long: `Seeds the four answers as facts, runs the rules to a fixed point and
prints the report in display order.

Example:
  eses infer --habitat "Bamboo Forest" --diet Herbivore --offsprings 1 --lifespan 20
  eses infer --habitat Ocean --diet Omnivore --offsprings 130 --lifespan 50 --format json --trace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInfer(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.query.Habitat, "habitat", "", "habitat, e.g. \"Bamboo Forest\"")
	cmd.Flags().StringVar(&opts.query.Diet, "diet", "", "Herbivore, Carnivore or Omnivore")
	cmd.Flags().StringVar(&opts.query.Offsprings, "offsprings", "", "offspring count")
	cmd.Flags().StringVar(&opts.query.Lifespan, "lifespan", "", "lifespan in years")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "output format: text, json, markdown")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "show which rules fired")
	return cmd
}

func (c *cli) runInfer(w io.Writer, opts inferOptions) error {
	switch opts.format {
	case "text", "json", "markdown":
	default:
		return fmt.Errorf("unknown format %q (want text, json or markdown)", opts.format)
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
	out := svc.Consult(opts.query)

	switch opts.format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newInferJSON(out, opts.trace))

	case "markdown":
		md, err := out.Report.RenderMarkdown(c.cfg.UI.MarkdownStyle, c.cfg.UI.WrapWidth)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		fmt.Fprint(w, md)

	default:
		fmt.Fprint(w, out.Report.Text())
		if !out.Identified() {
			fmt.Fprintln(w, "(no species identified)")
		}
	}

	if opts.trace && opts.format != "json" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "trace: %d passes, %d lookups, run %s\n", out.Result.Passes, out.Result.Lookups, out.RunID)
		for _, f := range out.Result.Firings {
			fmt.Fprintln(w, "  "+f.String())
		}
	}
	return nil
}

// inferJSON is the --format json document.
type inferJSON struct {
	Run        string        `json:"run"`
	Query      expert.Query  `json:"query"`
	Identified bool          `json:"identified"`
	Report     report.Report `json:"report"`
	Passes     int           `json:"passes,omitempty"`
	Lookups    int           `json:"lookups,omitempty"`
	Trace      []firingJSON  `json:"trace,omitempty"`
}

type firingJSON struct {
	Rule    string   `json:"rule"`
	Pass    int      `json:"pass"`
	Row     int      `json:"row"`
	Derived []string `json:"derived"`
}

func newInferJSON(out expert.Outcome, trace bool) inferJSON {
	doc := inferJSON{
		Run:        out.RunID,
		Query:      out.Query,
		Identified: out.Identified(),
		Report:     out.Report,
	}
	if !trace {
		return doc
	}
	doc.Passes = out.Result.Passes
	doc.Lookups = out.Result.Lookups
	doc.Trace = make([]firingJSON, len(out.Result.Firings))
	for i, f := range out.Result.Firings {
		derived := make([]string, len(f.Derived))
		for j, d := range f.Derived {
			derived[j] = string(d)
		}
		doc.Trace[i] = firingJSON{Rule: f.Rule, Pass: f.Pass, Row: f.Row, Derived: derived}
	}
	return doc
}
