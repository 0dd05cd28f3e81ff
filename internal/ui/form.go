package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
)

// focus identifies a form element. Order is tab order.
type focus int

const (
	focusHabitat focus = iota
	focusDiet
	focusOffsprings
	focusLifespan
	focusRun
	numFocus
)

func (f focus) next() focus { return (f + 1) % numFocus }
func (f focus) prev() focus { return (f + numFocus - 1) % numFocus }

// choice is a fixed-option field cycled with left/right.
type choice struct {
	options []string
	index   int
}

func (c choice) value() string {
	if len(c.options) == 0 {
		return ""
	}
	return c.options[c.index]
}

func (c *choice) step(delta int) {
	n := len(c.options)
	if n == 0 {
		return
	}
	c.index = ((c.index+delta)%n + n) % n
}

func newNumberInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 12
	ti.Width = 16
	ti.Prompt = ""
	return ti
}
