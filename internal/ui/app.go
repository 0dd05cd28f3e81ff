package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/eses/internal/dataset"
	"github.com/abelbrown/eses/internal/expert"
	"github.com/abelbrown/eses/internal/otel"
	"github.com/abelbrown/eses/internal/report"
)

// AppConfig holds everything the App needs from the outside.
type AppConfig struct {
	Habitats []string
	Diets    []string

	// Consult returns a Cmd that runs the query and yields ConsultComplete.
	Consult func(q expert.Query) tea.Cmd

	Ring   *otel.RingBuffer // optional, feeds the debug overlay
	Events *otel.Logger     // optional
	Source string           // dataset source shown in the header

	TraceKeys bool // emit a ui.key event for every key press
}

// App is the root Bubble Tea model.
// App does NOT hold the dataset. It receives results via messages.
type App struct {
	consult func(expert.Query) tea.Cmd
	ring    *otel.RingBuffer
	events  *otel.Logger
	source  string

	traceKeys bool

	keys keyMap
	help help.Model

	habitat    choice
	diet       choice
	offsprings textinput.Model
	lifespan   textinput.Model
	focus      focus

	outcome      *expert.Outcome
	err          error
	running      bool
	debugVisible bool
	width        int
	height       int
	ready        bool
}

// NewApp creates an App with focus on the habitat field.
func NewApp(cfg AppConfig) App {
	return App{
		consult:    cfg.Consult,
		ring:       cfg.Ring,
		events:     cfg.Events,
		source:     cfg.Source,
		traceKeys:  cfg.TraceKeys,
		keys:       defaultKeyMap(),
		help:       help.New(),
		habitat:    choice{options: append([]string(nil), cfg.Habitats...)},
		diet:       choice{options: append([]string(nil), cfg.Diets...)},
		offsprings: newNumberInput("e.g. 1"),
		lifespan:   newNumberInput("years"),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, nil

	case ConsultComplete:
		a.running = false
		if msg.Err != nil {
			a.err = msg.Err
			a.outcome = nil
		} else {
			out := msg.Outcome
			a.outcome = &out
			a.err = nil
		}
		return a, nil
	}

	// Cursor blink and other input-internal messages.
	return a.updateInput(msg)
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.traceKeys {
		a.emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Debug):
		a.debugVisible = !a.debugVisible
		return a, nil

	case key.Matches(msg, a.keys.Run):
		return a.submit()

	case key.Matches(msg, a.keys.Clear):
		a.outcome = nil
		a.err = nil
		return a, nil

	case key.Matches(msg, a.keys.Next):
		return a.setFocus(a.focus.next())

	case key.Matches(msg, a.keys.Prev):
		return a.setFocus(a.focus.prev())

	case key.Matches(msg, a.keys.Enter):
		if a.focus == focusRun {
			return a.submit()
		}
		return a.setFocus(a.focus.next())

	case key.Matches(msg, a.keys.Left), key.Matches(msg, a.keys.Right):
		delta := 1
		if key.Matches(msg, a.keys.Left) {
			delta = -1
		}
		switch a.focus {
		case focusHabitat:
			a.habitat.step(delta)
			return a, nil
		case focusDiet:
			a.diet.step(delta)
			return a, nil
		}
	}

	return a.updateInput(msg)
}

// updateInput forwards msg to the focused text field, if any.
func (a App) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.focus {
	case focusOffsprings:
		a.offsprings, cmd = a.offsprings.Update(msg)
	case focusLifespan:
		a.lifespan, cmd = a.lifespan.Update(msg)
	}
	return a, cmd
}

func (a App) setFocus(f focus) (tea.Model, tea.Cmd) {
	a.focus = f
	a.offsprings.Blur()
	a.lifespan.Blur()

	var cmd tea.Cmd
	switch f {
	case focusOffsprings:
		cmd = a.offsprings.Focus()
	case focusLifespan:
		cmd = a.lifespan.Focus()
	}
	return a, cmd
}

// submit starts a consultation unless one is already running.
func (a App) submit() (tea.Model, tea.Cmd) {
	if a.running || a.consult == nil {
		return a, nil
	}
	q := a.Query()
	a.running = true
	a.err = nil
	a.emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSubmit, Comp: "ui", Query: q.String()})
	return a, a.consult(q)
}

func (a App) emit(e otel.Event) {
	if a.events != nil {
		a.events.Emit(e)
	}
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	header := TitleStyle.Render("Endangered Species Expert System")
	if a.source != "" {
		header += SourceStyle.Render("  " + a.source)
	}

	var body string
	switch {
	case a.running:
		body = NoMatchStyle.Render("Consulting...")
	case a.err != nil:
		body = ErrorStyle.Width(a.width).Render("Error: " + a.err.Error())
	case a.outcome != nil:
		body = renderReport(a.outcome.Report, a.panelWidth())
	}

	parts := []string{header, "", a.renderForm()}
	if body != "" {
		parts = append(parts, body)
	}
	parts = append(parts, "", a.help.View(a.keys))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderForm() string {
	rows := []string{
		a.label(focusHabitat, "Habitat") + a.choiceView(focusHabitat, a.habitat),
		a.label(focusDiet, "Diet") + a.choiceView(focusDiet, a.diet),
		a.label(focusOffsprings, "Offsprings") + a.offsprings.View(),
		a.label(focusLifespan, "Lifespan") + a.lifespan.View(),
	}

	button := Button.Render("Run")
	if a.focus == focusRun {
		button = FocusedButton.Render("Run")
	}
	rows = append(rows, button)
	return strings.Join(rows, "\n")
}

func (a App) label(f focus, text string) string {
	if a.focus == f {
		return FocusedLabel.Render(text)
	}
	return FieldLabel.Render(text)
}

func (a App) choiceView(f focus, c choice) string {
	v := ChoiceStyle.Render(c.value())
	if a.focus != f {
		return "  " + v
	}
	return ChoiceArrow.Render("< ") + v + ChoiceArrow.Render(" >")
}

func (a App) panelWidth() int {
	w := a.width - 2
	if w > 100 {
		w = 100
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderReport lists the report lines with styled keys. A report without
// a name gets a note explaining that nothing was identified.
func renderReport(rep report.Report, width int) string {
	var lines []string
	if _, ok := rep.Get(dataset.Name); !ok {
		lines = append(lines, NoMatchStyle.Render("No species matched these answers."))
	}
	for _, l := range rep.Lines {
		lines = append(lines, ReportLabel.Render(string(l.Key)+":")+" "+ReportValue.Render(l.Value))
	}
	return ReportPanel.Width(width).Render(strings.Join(lines, "\n"))
}

// Query returns the current form values.
func (a App) Query() expert.Query {
	return expert.Query{
		Habitat:    a.habitat.value(),
		Diet:       a.diet.value(),
		Offsprings: a.offsprings.Value(),
		Lifespan:   a.lifespan.Value(),
	}
}

// Outcome returns the last consultation result, or nil (for testing).
func (a App) Outcome() *expert.Outcome {
	return a.outcome
}
