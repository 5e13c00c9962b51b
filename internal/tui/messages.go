package tui

import (
	"time"

	"reelforge/internal/render"
)

// StageMsg reports a Compositor transition.
type StageMsg struct {
	Stage  render.Stage
	Detail string
	At     time.Time
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}

// ErrorMsg signals a fatal error; the TUI should quit.
type ErrorMsg struct {
	Err error
}
