// Package ui provides the Bubble Tea TUI for ESES.
package ui

import "github.com/abelbrown/eses/internal/expert"

// ConsultComplete is sent when a consultation finishes.
type ConsultComplete struct {
	Outcome expert.Outcome
	Err     error
}
