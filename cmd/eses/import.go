package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/otel"
	"github.com/abelbrown/eses/internal/store"
)

func (c *cli) importCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import CSV",
		Short: "Load a delimited dataset into a SQLite database",
		Long: `Validates CSV and replaces the species table of the database with
its rows, keeping file order. Use the database afterwards with
--dataset PATH.db.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = c.cfg.DatabasePath()
			}
			return c.runImport(cmd.OutOrStdout(), args[0], dbPath)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "database path (default ~/.eses/eses.db)")
	return cmd
}

func (c *cli) runImport(w io.Writer, csvPath, dbPath string) error {
	events, closeEvents, err := c.openEventLog()
	if err != nil {
		return err
	}
	defer closeEvents()

	tbl, err := dataset.LoadFile(csvPath)
	if err != nil {
		events.Error(otel.KindDatasetError, "cli", err)
		return fmt.Errorf("load dataset: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		events.Error(otel.KindStoreError, "store", err)
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	n, err := st.ReplaceSpecies(tbl.Source(), tbl.Records())
	if err != nil {
		events.Error(otel.KindStoreError, "store", err)
		return err
	}

	events.Emit(otel.Event{
		Level:  otel.LevelInfo,
		Kind:   otel.KindStoreImport,
		Comp:   "store",
		Source: tbl.Source(),
		Count:  n,
		Msg:    dbPath,
	})
	fmt.Fprintf(w, "imported %d rows from %s into %s\n", n, tbl.Source(), dbPath)
	return nil
}
