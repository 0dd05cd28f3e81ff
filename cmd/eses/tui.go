package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/logging"
	"github.com/abelbrown/eses/internal/otel"
	"github.com/abelbrown/eses/internal/ui"
)

func (c *cli) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive form (default)",
		Args:  cobra.NoArgs,
		RunE:  c.runTUI,
	}
}

func (c *cli) runTUI(cmd *cobra.Command, args []string) error {
	// The TUI owns the terminal.
	if err := logging.Init(c.cfg.LogDir(), c.cfg.LogLevel); err != nil {
		return err
	}
	defer logging.Close()

	events, closeEvents, err := c.openEventLog()
	if err != nil {
		return err
	}
	defer closeEvents()

	ring := otel.NewRingBuffer(c.cfg.UI.RingSize)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "tui", "starting")

	svc, err := c.newService(events)
	if err != nil {
		return err
	}
	tbl := svc.Table()
	logging.Info("dataset loaded", "source", tbl.Source(), "rows", tbl.Len())

	app := ui.NewApp(ui.AppConfig{
		Habitats: expert.HabitatChoices(tbl),
		Diets:    expert.DietChoices(tbl),
		Consult: func(q expert.Query) tea.Cmd {
			return func() tea.Msg {
				out := svc.Consult(q)
				logging.Debug("consultation", "run", out.RunID, "identified", out.Identified(), "dur", out.Dur)
				return ui.ConsultComplete{Outcome: out}
			}
		},
		Ring:      ring,
		Events:    events,
		Source:    tbl.Source(),
		TraceKeys: c.cfg.UI.TraceKeys,
	})

	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := program.Run(); err != nil {
		logging.Error("program exited", "err", err)
		return err
	}

	events.Info(otel.KindShutdown, "tui", "stopped")
	return nil
}
