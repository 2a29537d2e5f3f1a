// SPDX-License-Identifier: MIT
// Package tui renders the analyzer's frames in the terminal: the
// spectrum as filled columns with the response curve drawn on top,
// plus key bindings for the filter parameters.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"eq/internal/analyzer"
	"eq/internal/params"
	"eq/internal/render"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	spectrumStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3C6E47"))

	curveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)
)

// frameMsg carries one analyzer frame into the Bubble Tea loop.
type frameMsg render.Frame

// FrameConsumer forwards analyzer frames to a running program. It
// keeps only the latest frame: the terminal cannot usefully display
// a backlog.
type FrameConsumer struct {
	program *tea.Program
}

func NewFrameConsumer(program *tea.Program) *FrameConsumer {
	return &FrameConsumer{program: program}
}

func (fc *FrameConsumer) Consume(frame render.Frame) error {
	fc.program.Send(frameMsg(frame))
	return nil
}

func (fc *FrameConsumer) Close() error { return nil }

// ViewerModel is the Bubble Tea model for the live analyzer display.
type ViewerModel struct {
	controller *analyzer.Controller
	store      *params.Store

	frame render.Frame
	ready bool

	termWidth  int
	termHeight int

	peakBypassed    bool
	lowCutBypassed  bool
	highCutBypassed bool
}

func NewViewerModel(controller *analyzer.Controller, store *params.Store) ViewerModel {
	return ViewerModel{controller: controller, store: store}
}

func (m ViewerModel) Init() tea.Cmd {
	return nil
}

func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.ready = true

	case frameMsg:
		m.frame = render.Frame(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, key.NewBinding(key.WithKeys("q", "ctrl+c"))):
			return m, tea.Quit

		case key.Matches(msg, key.NewBinding(key.WithKeys("up"))):
			m.nudge(params.PeakGain, 1)
		case key.Matches(msg, key.NewBinding(key.WithKeys("down"))):
			m.nudge(params.PeakGain, -1)
		case key.Matches(msg, key.NewBinding(key.WithKeys("left"))):
			m.scale(params.PeakFreq, 1/1.1)
		case key.Matches(msg, key.NewBinding(key.WithKeys("right"))):
			m.scale(params.PeakFreq, 1.1)

		case key.Matches(msg, key.NewBinding(key.WithKeys("p"))):
			m.peakBypassed = !m.peakBypassed
			m.controller.SetPeakBypassed(m.peakBypassed)
		case key.Matches(msg, key.NewBinding(key.WithKeys("l"))):
			m.lowCutBypassed = !m.lowCutBypassed
			m.controller.SetLowCutBypassed(m.lowCutBypassed)
		case key.Matches(msg, key.NewBinding(key.WithKeys("h"))):
			m.highCutBypassed = !m.highCutBypassed
			m.controller.SetHighCutBypassed(m.highCutBypassed)
		}
	}

	return m, nil
}

func (m ViewerModel) nudge(name string, delta float64) {
	m.store.Set(name, m.store.Float(name)+delta)
}

func (m ViewerModel) scale(name string, factor float64) {
	m.store.Set(name, m.store.Float(name)*factor)
}

func (m ViewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	title := titleStyle.Render("EQ Analyzer")
	status := infoStyle.Render(m.statusLine())
	help := infoStyle.Render("↑/↓: Peak Gain • ←/→: Peak Freq • p/l/h: Bypass • q: Quit")

	plotRows := m.termHeight - 6
	if plotRows < 4 || len(m.frame.Response) == 0 {
		return fmt.Sprintf("%s\n\n%s\n\n%s", title, status, help)
	}

	plot := m.renderPlot(m.termWidth, plotRows)
	return fmt.Sprintf("%s\n%s\n%s\n%s", title, plot, status, help)
}

func (m ViewerModel) statusLine() string {
	flag := func(b bool) string {
		if b {
			return " [byp]"
		}
		return ""
	}
	return fmt.Sprintf("Peak %.0f Hz %+.1f dB Q %.2f%s • LowCut %.0f Hz%s • HighCut %.0f Hz%s • frame %d",
		m.store.Float(params.PeakFreq),
		m.store.Float(params.PeakGain),
		m.store.Float(params.PeakQuality),
		flag(m.peakBypassed),
		m.store.Float(params.LowCutFreq),
		flag(m.lowCutBypassed),
		m.store.Float(params.HighCutFreq),
		flag(m.highCutBypassed),
		m.frame.Seq,
	)
}

// renderPlot downsamples the frame's pixel-space paths onto a
// character grid. Spectrum columns fill from the bottom; the response
// curve overdraws them.
func (m ViewerModel) renderPlot(cols, rows int) string {
	if cols < 2 || m.frame.Width < 2 || m.frame.Height < 1 {
		return ""
	}

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = make([]rune, cols)
		for c := range grid[r] {
			grid[r][c] = ' '
		}
	}

	// cellRow maps a pixel-space Y to a grid row, clamped to the plot.
	cellRow := func(y float32) int {
		r := int(float64(y) / float64(m.frame.Height) * float64(rows))
		if r < 0 {
			r = 0
		}
		if r >= rows {
			r = rows - 1
		}
		return r
	}

	for c := 0; c < cols; c++ {
		px := c * m.frame.Width / cols

		if len(m.frame.Spectrum) > 0 {
			path := m.frame.Spectrum[0]
			if px < len(path) {
				for r := cellRow(path[px].Y); r < rows; r++ {
					grid[r][c] = '░'
				}
			}
		}

		if px < len(m.frame.Response) {
			grid[cellRow(m.frame.Response[px].Y)][c] = '─'
		}
	}

	var sb strings.Builder
	for r := range grid {
		line := string(grid[r])
		// Style the full line by its dominant glyph to avoid per-rune
		// escape sequences.
		if strings.ContainsRune(line, '─') {
			sb.WriteString(curveStyle.Render(line))
		} else {
			sb.WriteString(spectrumStyle.Render(line))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StartViewer runs the live display, wiring the program up as a frame
// consumer before the analyzer starts publishing.
func StartViewer(controller *analyzer.Controller, store *params.Store) error {
	p := tea.NewProgram(NewViewerModel(controller, store), tea.WithAltScreen())
	controller.AddConsumer(NewFrameConsumer(p))
	_, err := p.Run()
	return err
}
