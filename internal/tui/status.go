package tui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"reelforge/internal/render"
)

const clearLine = "\r\033[K"

// StatusWriter keeps one spinning status line for phases that have no table
// of their own, such as the timeline dry run. Each finished phase is left
// behind as a checked line with its elapsed time.
type StatusWriter struct {
	w        io.Writer
	interval time.Duration

	mu    sync.Mutex
	phase string
	start time.Time
	tick  int

	stopOnce sync.Once
	done     chan struct{}
	exited   chan struct{}
}

// NewStatusWriter starts the spinner on w.
func NewStatusWriter(w io.Writer) *StatusWriter {
	sw := &StatusWriter{
		w:        w,
		interval: 100 * time.Millisecond,
		done:     make(chan struct{}),
		exited:   make(chan struct{}),
	}
	go sw.loop()
	return sw
}

// Update finishes the current phase and starts msg.
func (sw *StatusWriter) Update(msg string) {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	if msg == sw.phase {
		return
	}
	sw.finishLocked()
	sw.phase = msg
	sw.start = time.Now()
}

// Stage implements render.ProgressReporter.
func (sw *StatusWriter) Stage(stage render.Stage, detail string) {
	if detail == "" {
		sw.Update(stage.String())
		return
	}
	sw.Update(fmt.Sprintf("%s: %s", stage, detail))
}

// Stop finishes the current phase and halts the spinner. It is safe to call
// more than once.
func (sw *StatusWriter) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.done)
		<-sw.exited
		sw.mu.Lock()
		sw.finishLocked()
		sw.phase = ""
		sw.mu.Unlock()
	})
}

func (sw *StatusWriter) finishLocked() {
	if sw.phase == "" {
		return
	}
	mark := StatusStyle(StatusDone).Render("✓")
	fmt.Fprintf(sw.w, "%s%s %s (%s)\n", clearLine, mark, sw.phase, formatElapsed(time.Since(sw.start)))
}

func (sw *StatusWriter) loop() {
	defer close(sw.exited)
	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.done:
			return
		case <-ticker.C:
			sw.mu.Lock()
			if sw.phase != "" {
				frame := spinnerFrames[sw.tick%len(spinnerFrames)]
				sw.tick++
				fmt.Fprintf(sw.w, "%s%s %s (%s)", clearLine, frame, sw.phase, formatElapsed(time.Since(sw.start)))
			}
			sw.mu.Unlock()
		}
	}
}

// formatElapsed renders d as "850ms", "4.2s", "37s" or "2m05s".
func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
