package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reelforge/internal/render"
)

// StageReporter forwards Compositor transitions to a bubbletea program.
type StageReporter struct {
	send func(tea.Msg)
}

// NewStageReporter wraps a tea.Program send function.
func NewStageReporter(send func(tea.Msg)) *StageReporter {
	return &StageReporter{send: send}
}

// Stage implements render.ProgressReporter.
func (r *StageReporter) Stage(stage render.Stage, detail string) {
	r.send(StageMsg{Stage: stage, Detail: detail, At: time.Now()})
}

// PlainReporter writes one line per transition, for logs and pipes.
type PlainReporter struct {
	mu   sync.Mutex
	w    io.Writer
	last time.Time
	now  func() time.Time
}

// NewPlainReporter returns a reporter writing to w.
func NewPlainReporter(w io.Writer) *PlainReporter {
	return &PlainReporter{w: w, last: time.Now(), now: time.Now}
}

// Stage implements render.ProgressReporter.
func (r *PlainReporter) Stage(stage render.Stage, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	elapsed := now.Sub(r.last)
	r.last = now
	fmt.Fprintf(r.w, "%-18s %-8s %s\n", stage, formatElapsed(elapsed), detail)
}

var (
	_ render.ProgressReporter = (*StageReporter)(nil)
	_ render.ProgressReporter = (*PlainReporter)(nil)
)
