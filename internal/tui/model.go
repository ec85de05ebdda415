// Package tui is a terminal frontend for the drawing engine. The surface is
// drawn with half-block characters, two pixel rows per terminal row, and
// mouse input is fed to the engine's dispatcher.
package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/filkovsp/WEB-Drawing-App/internal/engine"
	"github.com/filkovsp/WEB-Drawing-App/internal/geom"
	"github.com/filkovsp/WEB-Drawing-App/internal/input"
	"github.com/filkovsp/WEB-Drawing-App/internal/shape"
	"github.com/filkovsp/WEB-Drawing-App/internal/stage"
	"github.com/filkovsp/WEB-Drawing-App/internal/surface/raster"
)

// EngineFactory builds an engine for a w x h pixel surface. The engine must
// use raster surfaces for anything to show up.
type EngineFactory func(w, h int) (*engine.Engine, error)

var (
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#E6E6E6")).Background(lipgloss.Color("#243141"))
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#7C3AED")).Bold(true)
	advisoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

var shapeKeys = map[string]shape.Kind{
	"c": shape.Circle,
	"e": shape.Ellipse,
	"r": shape.Rectangle,
	"l": shape.Line,
	"0": shape.None,
}

// status mirrors the engine observers. It is shared by model copies.
type status struct {
	view     stage.ViewChange
	pointer  geom.Point
	advisory string
	note     string
	err      error
}

type Model struct {
	newEngine EngineFactory
	eng       *engine.Engine
	yank      func(string) error
	bg        color.Color

	cols, rows int
	ptr        *pointer
	st         *status
}

type Option func(*Model)

// WithClipboard replaces the system clipboard used by the yank key.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.yank = write }
}

func WithBackground(c color.Color) Option {
	return func(m *Model) { m.bg = c }
}

func New(newEngine EngineFactory, opts ...Option) Model {
	m := Model{
		newEngine: newEngine,
		yank:      clipboard.WriteAll,
		bg:        color.White,
		ptr:       &pointer{},
		st:        &status{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Engine returns the engine, or nil before the first window size arrives.
func (m Model) Engine() *engine.Engine { return m.eng }

// drawRows is the number of terminal rows given to the surface.
func (m Model) drawRows() int {
	return max(m.rows-1, 0)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		// The surface keeps the size of the first window; later resizes
		// crop or pad the picture.
		if m.eng == nil && m.cols > 0 && m.drawRows() > 0 {
			eng, err := m.newEngine(m.cols, m.drawRows()*2)
			if err != nil {
				m.st.err = err
				return m, nil
			}
			m.attach(eng)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if m.eng == nil {
			return m, nil
		}
		for _, ev := range m.ptr.translate(msg, m.drawRows()) {
			m.dispatch(ev)
		}
	}
	return m, nil
}

func (m *Model) attach(eng *engine.Engine) {
	m.eng = eng
	st := m.st
	st.view = eng.View()
	eng.OnViewChange(func(v stage.ViewChange) { st.view = v })
	eng.OnPointer(func(p geom.Point) { st.pointer = p })
}

func (m Model) dispatch(ev input.Event) {
	out, err := m.eng.Dispatch(ev)
	m.st.err = err
	switch {
	case out.Advisory != "":
		m.st.advisory = out.Advisory
	case out.Committed != nil:
		m.st.advisory = ""
		m.st.note = fmt.Sprintf("%s committed", out.Committed.Kind)
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	if m.eng == nil {
		return m, nil
	}

	m.st.err = nil
	if kind, ok := shapeKeys[key]; ok {
		m.eng.Select(kind)
		m.st.advisory = ""
		return m, nil
	}

	switch key {
	case "esc":
		m.dispatch(input.Press(input.KeyEscape))
	case "z":
		m.st.err = m.eng.Center()
	case "x":
		m.st.err = m.eng.Clear(false)
		m.st.note = "cleared"
	case "X":
		m.st.err = m.eng.Reset()
		m.st.note = "reset"
	case "y":
		if err := m.yank(viewText(m.st.view)); err != nil {
			m.st.err = fmt.Errorf("clipboard: %w", err)
		} else {
			m.st.note = "view copied"
		}
	}
	return m, nil
}

func viewText(v stage.ViewChange) string {
	return fmt.Sprintf("offset=%.0f,%.0f zoom=%.2f", v.Offset.X, v.Offset.Y, v.Zoom)
}

// Frame flattens every layer, ephemeral ones included, in compositing order.
func (m Model) Frame() image.Image {
	w, h := m.eng.Size()
	var imgs []image.Image
	for _, id := range m.eng.LayerIDs() {
		l, err := m.eng.Stage().Layer(id)
		if err != nil {
			continue
		}
		if c, ok := l.Surface().(*raster.Canvas); ok {
			imgs = append(imgs, c.Image())
		}
	}
	return raster.Flatten(w, h, m.bg, imgs...)
}

func (m Model) View() string {
	if m.st.err != nil && m.eng == nil {
		return errorStyle.Render(m.st.err.Error())
	}
	if m.eng == nil {
		return "starting..."
	}
	body := HalfBlocks(m.Frame(), m.cols, m.drawRows())
	return body + "\n" + m.statusLine()
}

func (m Model) statusLine() string {
	st := m.st
	tool := m.eng.Selection().Kind.String()
	if m.eng.Selection().Kind == shape.None {
		tool = "no tool"
	}

	parts := []string{
		toolStyle.Render(tool),
		viewText(st.view),
		fmt.Sprintf("pointer %.0f,%.0f", st.pointer.X, st.pointer.Y),
	}
	switch {
	case st.err != nil:
		parts = append(parts, errorStyle.Render(st.err.Error()))
	case st.advisory != "":
		parts = append(parts, advisoryStyle.Render(st.advisory))
	case st.note != "":
		parts = append(parts, st.note)
	}
	parts = append(parts, "c/e/r/l tool · z centre · x clear · y yank · q quit")

	return barStyle.Width(m.cols).MaxWidth(m.cols).Render(strings.Join(parts, " │ "))
}
