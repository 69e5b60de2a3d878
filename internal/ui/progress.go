// Package ui renders live progress of a multi-file check in the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"texlint/internal/driver"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateWorking
	stateClean
	stateWarnings
	stateErrors
	stateFailed // could not be loaded
)

func (s fileState) finished() bool { return s >= stateClean }

// weight is the share of a file's work done in this state.
func (s fileState) weight() float64 {
	switch {
	case s.finished():
		return 1
	case s == stateWorking:
		return 0.5
	case s == stateLoading:
		return 0.2
	}
	return 0
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	activeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	cleanStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	spinnerStyle = activeStyle
)

type document struct {
	path     string
	state    fileState
	errors   int
	warnings int
	verb     string // "loading", "checking", "formatting"
}

// summary is the right-hand column of a file row.
func (d document) summary() string {
	switch d.state {
	case stateQueued:
		return dimStyle.Render("queued")
	case stateLoading, stateWorking:
		return activeStyle.Render(d.verb)
	case stateClean:
		return cleanStyle.Render("ok")
	case stateWarnings:
		return warnStyle.Render(plural(d.warnings, "warning"))
	case stateErrors:
		s := plural(d.errors, "error")
		if d.warnings > 0 {
			s += ", " + plural(d.warnings, "warning")
		}
		return errorStyle.Render(s)
	default:
		return errorStyle.Render("unreadable")
	}
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	docs    []document
	byPath  map[string]int
	width   int
	done    bool
}

type eventMsg driver.Event
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that lists the documents of a
// run with their findings as they complete. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(spinnerStyle))
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 60

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		docs:    make([]document, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, path := range files {
		m.docs[i] = document{path: path}
		m.byPath[path] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply folds one driver event into the document list.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	d := &m.docs[i]
	switch ev.Status {
	case driver.StatusQueued:
		d.state = stateQueued
	case driver.StatusWorking:
		d.state, d.verb = stateWorking, verbFor(ev.Stage)
		if ev.Stage == driver.StageLoad {
			d.state = stateLoading
		}
	case driver.StatusDone, driver.StatusError:
		d.errors, d.warnings = ev.Errors, ev.Warnings
		switch {
		case ev.Stage == driver.StageLoad:
			d.state = stateFailed
		case ev.Errors > 0 || ev.Status == driver.StatusError:
			d.state = stateErrors
		case ev.Warnings > 0:
			d.state = stateWarnings
		default:
			d.state = stateClean
		}
	}

	var done float64
	for _, doc := range m.docs {
		done += doc.state.weight()
	}
	return m.bar.SetPercent(done / float64(len(m.docs)))
}

func verbFor(stage driver.Stage) string {
	switch stage {
	case driver.StageLoad:
		return "loading"
	case driver.StageFormat:
		return "formatting"
	default:
		return "checking"
	}
}

// totals counts finished documents and their findings.
func (m *progressModel) totals() (finished, errors, warnings int) {
	for _, d := range m.docs {
		if d.state.finished() {
			finished++
		}
		errors += d.errors
		warnings += d.warnings
	}
	return finished, errors, warnings
}

// maxRows caps the document list; clean files leave it first.
const maxRows = 12

// rows keeps active documents and documents with findings in view, then
// fills up with queued ones in collection order.
func (m *progressModel) rows() []document {
	if len(m.docs) <= maxRows {
		return m.docs
	}
	out := make([]document, 0, maxRows)
	pick := func(keep func(document) bool) {
		for _, d := range m.docs {
			if len(out) == maxRows {
				return
			}
			if keep(d) {
				out = append(out, d)
			}
		}
	}
	pick(func(d document) bool { return d.state == stateLoading || d.state == stateWorking })
	pick(func(d document) bool { return d.state >= stateWarnings })
	pick(func(d document) bool { return d.state == stateQueued })
	return out
}

func (m *progressModel) View() string {
	if len(m.docs) == 0 {
		return ""
	}
	finished, errs, warns := m.totals()

	var b strings.Builder
	lead := m.spinner.View()
	if m.done {
		lead = cleanStyle.Render("✓")
	}
	header := fmt.Sprintf("%s %d/%d", m.title, finished, len(m.docs))
	if errs > 0 || warns > 0 {
		header += fmt.Sprintf("  %s, %s", plural(errs, "error"), plural(warns, "warning"))
	}
	b.WriteString(lead + " " + headerStyle.Render(header) + "\n\n")

	pathWidth := max(m.width-24, 20)
	rows := m.rows()
	for _, d := range rows {
		fmt.Fprintf(&b, "  %-*s  %s\n", pathWidth, truncate(d.path, pathWidth), d.summary())
	}
	if hidden := len(m.docs) - len(rows); hidden > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  … %d more", hidden)) + "\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// truncate shortens value to width display cells, keeping the end of the
// path since the file name is the informative part.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	// режем с начала: имя файла важнее каталога
	runes := []rune(value)
	for i := range runes {
		if tail := string(runes[i:]); runewidth.StringWidth(tail) <= width-3 {
			return "..." + tail
		}
	}
	return "..."
}
