package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"reelforge/internal/render"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
	detailWidth  = 48
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives animation (spinner, marquee).
type tickMsg time.Time

type stageRow struct {
	stage   render.Stage
	status  string
	detail  string
	started time.Time
	elapsed time.Duration
}

// ProgressModel renders one row per Compositor stage. A StageMsg completes
// its stage and starts the next one; the encoding stage stays running until
// StageDone arrives.
type ProgressModel struct {
	title string
	rows  []stageRow
	index map[render.Stage]int
	done  bool
	err   error

	// Animation state.
	tick int
}

// NewProgressModel creates a model with every forward stage pending and the
// first one running.
func NewProgressModel(title string) ProgressModel {
	m := ProgressModel{title: title, index: make(map[render.Stage]int)}
	for _, st := range render.Stages() {
		if st == render.StageDone {
			continue
		}
		m.index[st] = len(m.rows)
		m.rows = append(m.rows, stageRow{stage: st, status: StatusPending})
	}
	if len(m.rows) > 0 {
		m.rows[0].status = StatusActive
		m.rows[0].started = time.Now()
	}
	return m
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case StageMsg:
		m.applyStage(msg)
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case ErrorMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *ProgressModel) applyStage(msg StageMsg) {
	at := msg.At
	if at.IsZero() {
		at = time.Now()
	}

	switch msg.Stage {
	case render.StageFailed:
		for i := range m.rows {
			if m.rows[i].status == StatusActive || m.rows[i].status == StatusPending {
				m.finish(i, StatusFailed, msg.Detail, at)
				return
			}
		}
		return
	case render.StageDone:
		for i := range m.rows {
			if m.rows[i].status != StatusDone {
				m.finish(i, StatusDone, "", at)
			}
		}
		if n := len(m.rows); n > 0 && msg.Detail != "" {
			m.rows[n-1].detail = msg.Detail
		}
		return
	}

	idx, ok := m.index[msg.Stage]
	if !ok {
		return
	}
	for i := 0; i < idx; i++ {
		if m.rows[i].status != StatusDone {
			m.finish(i, StatusDone, "", at)
		}
	}
	if msg.Stage == render.StageEncoding {
		m.start(idx, at)
		m.rows[idx].detail = msg.Detail
		return
	}
	m.finish(idx, StatusDone, msg.Detail, at)
	if idx+1 < len(m.rows) {
		m.start(idx+1, at)
	}
}

func (m *ProgressModel) start(i int, at time.Time) {
	row := &m.rows[i]
	if row.status == StatusActive {
		return
	}
	row.status = StatusActive
	row.started = at
}

func (m *ProgressModel) finish(i int, status, detail string, at time.Time) {
	row := &m.rows[i]
	if !row.started.IsZero() {
		row.elapsed = at.Sub(row.started)
	}
	row.status = status
	if detail != "" {
		row.detail = detail
	}
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if m.done && m.err != nil {
		return fmt.Sprintf("Error: %v\n", m.err)
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n\n")
	}

	stageWidth := len("STAGE")
	for _, row := range m.rows {
		if n := len(row.stage.String()); n > stageWidth {
			stageWidth = n
		}
	}
	statusWidth := len(StatusPending)
	const elapsedWidth = 8

	header := []string{
		HeaderStyle.Render(pad("STAGE", stageWidth)),
		HeaderStyle.Render(pad("STATUS", statusWidth)),
		HeaderStyle.Render(pad("ELAPSED", elapsedWidth)),
		HeaderStyle.Render("DETAIL"),
	}
	b.WriteString(strings.Join(header, "  "))
	b.WriteByte('\n')

	for _, row := range m.rows {
		elapsed := "-"
		switch {
		case row.status == StatusActive && !row.started.IsZero():
			elapsed = formatElapsed(time.Since(row.started))
		case row.elapsed > 0:
			elapsed = formatElapsed(row.elapsed)
		}
		detail := row.detail
		if row.status == StatusActive && len(detail) > detailWidth {
			detail = marqueeText(detail, detailWidth, m.tick)
		} else {
			detail = TruncateWithEllipsis(detail, detailWidth)
		}
		parts := []string{
			pad(row.stage.String(), stageWidth),
			StatusStyle(row.status).Render(pad(row.status, statusWidth)),
			pad(elapsed, elapsedWidth),
			detail,
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteByte('\n')
	}

	if !m.done {
		completed, total := m.progressCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Assembling %d/%d...\n", spinner, completed, total)
	}

	return b.String()
}

// progressCounts returns (completed, total) stages.
func (m ProgressModel) progressCounts() (int, int) {
	completed := 0
	for _, row := range m.rows {
		if row.status == StatusDone {
			completed++
		}
	}
	return completed, len(m.rows)
}

// Done returns whether the model has finished (work done or error).
func (m ProgressModel) Done() bool {
	return m.done
}

// Err returns any fatal error that occurred.
func (m ProgressModel) Err() error {
	return m.err
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText renders a scrolling window over text that exceeds the given width.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	cycleLen := len(cycle)
	offset := tick % cycleLen
	var result strings.Builder
	result.Grow(width)
	for i := 0; i < width; i++ {
		result.WriteByte(cycle[(offset+i)%cycleLen])
	}
	return result.String()
}

// NonEmptyOrDash returns "-" for empty/whitespace strings.
func NonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
