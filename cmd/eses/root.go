package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/config"
	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/logging"
	"github.com/abelbrown/eses/internal/otel"
)

// cli holds the global flags and the configuration resolved from them.
type cli struct {
	configPath  string
	datasetPath string
	cfg         *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "eses",
		Short: "Endangered Species Expert System",
		Long: `ESES identifies an endangered species from its habitat, diet,
offspring count and lifespan by forward-chaining six rules over a
species table, then reports everything the table knows about it.

Run without a command to open the interactive form.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runTUI,
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.eses/config.yaml)")
	root.PersistentFlags().StringVar(&c.datasetPath, "dataset", "", "CSV/TSV file or SQLite database (default: built-in)")

	root.AddCommand(
		c.tuiCmd(),
		c.inferCmd(),
		c.batchCmd(),
		c.importCmd(),
		c.statsCmd(),
		c.rulesCmd(),
		c.eventsCmd(),
		c.configCmd(),
	)
	return root
}

// setup resolves config for every command. CLI commands log warnings to
// stderr; the TUI switches to a log file.
func (c *cli) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.datasetPath != "" {
		cfg.Dataset = c.datasetPath
	}
	c.cfg = cfg
	return logging.InitWriter(cmd.ErrOrStderr(), "warn")
}

// openEventLog opens the JSONL event log for appending. The returned func
// flushes and closes it.
func (c *cli) openEventLog() (*otel.Logger, func(), error) {
	path := c.cfg.EventLogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	events := otel.NewLogger(f)
	return events, func() {
		events.Close()
		f.Close()
	}, nil
}

// newService loads the configured dataset. events may be nil.
func (c *cli) newService(events *otel.Logger) (*expert.Service, error) {
	tbl, err := expert.LoadTable(c.cfg.Dataset)
	if err != nil {
		if events != nil {
			events.Error(otel.KindDatasetError, "cli", err)
		}
		logging.Error("dataset load failed", "path", c.cfg.Dataset, "err", err)
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return expert.NewService(tbl, events), nil
}
