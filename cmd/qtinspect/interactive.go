package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/qtbridge/bridge"
	"github.com/wippyai/qtbridge/config"
	"github.com/wippyai/qtbridge/native"
	"github.com/wippyai/qtbridge/qtypes"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const visibleEvents = 8

type interactiveModel struct {
	err       error
	session   *session
	requester *native.UpdateRequester
	values    []string
	swatches  map[int]qtypes.Color
	input     textinput.Model
	selected  int
	state     modelState
}

type modelState int

const (
	stateSelectProperty modelState = iota
	stateEditValue
)

// tickMsg is sent by the update ticker after it has requested an update.
type tickMsg struct{}

func newInteractiveModel(s *session) *interactiveModel {
	m := &interactiveModel{
		session:   s,
		requester: s.requester(),
		state:     stateSelectProperty,
	}
	m.refresh()
	return m
}

func runInteractive(res *config.Resolved, target string, tick time.Duration) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := openSession(ctx, res, target)
	if err != nil {
		return err
	}
	defer s.close(context.Background())

	m := newInteractiveModel(s)
	p := tea.NewProgram(m, tea.WithAltScreen())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	g.Go(func() error {
		return runTicker(gctx, m.requester, p, tick)
	})
	return g.Wait()
}

// runTicker requests updates from its own goroutine. The requests are
// coalesced by the runtime and delivered when the TUI processes events.
func runTicker(ctx context.Context, u *native.UpdateRequester, p *tea.Program, every time.Duration) error {
	if every <= 0 {
		return nil
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			u.Request()
			p.Send(tickMsg{})
		}
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateEditValue {
			return m.updateEdit(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.selected < len(m.session.decl.Properties)-1 {
				m.selected++
			}

		case "enter":
			m.startEdit()
			return m, textinput.Blink

		case "u":
			m.requester.Request()
			m.process()

		case "c":
			m.session.events.reset()
			m.err = nil
		}

	case tickMsg:
		m.process()
	}

	return m, nil
}

func (m *interactiveModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "enter":
		name := m.session.decl.Properties[m.selected].Name
		m.err = m.session.set(name, m.input.Value())
		m.state = stateSelectProperty
		m.process()
		return m, nil

	case "esc":
		m.state = stateSelectProperty
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) startEdit() {
	p := m.session.decl.Properties[m.selected]
	ti := textinput.New()
	ti.Prompt = p.Name + ": "
	ti.Placeholder = m.values[m.selected]
	ti.Width = 40
	ti.Focus()
	m.input = ti
	m.state = stateEditValue
}

// process runs the event loop on the TUI goroutine, which owns the object.
func (m *interactiveModel) process() {
	m.session.rt.ProcessEvents()
	m.refresh()
}

func (m *interactiveModel) refresh() {
	m.values = m.session.values()
	m.swatches = make(map[int]qtypes.Color)
	_ = m.session.rt.View(m.session.handle, func(r native.Ref) error {
		for i, p := range m.session.decl.Properties {
			if p.Ops.Name() != qtypes.ColorCodec.Name() {
				continue
			}
			if c, ok := bridge.Get(r, i, qtypes.ColorCodec); ok {
				m.swatches[i] = c
			}
		}
		return nil
	})
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Object Inspector"))
	b.WriteString(" ")
	b.WriteString(fmt.Sprintf("%s #%d", m.session.decl.Type, m.session.handle))
	b.WriteString("\n\n")

	for i, p := range m.session.decl.Properties {
		line := fmt.Sprintf("%-10s %s = %s", p.Name, typeStyle.Render(fmt.Sprintf("%-8s", p.Ops.Name())), m.values[i])
		if c, ok := m.swatches[i]; ok {
			line += " " + swatch(c)
		}
		if i == m.selected && m.state == stateSelectProperty {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + nameStyle.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.state == stateEditValue {
		b.WriteString(m.input.View())
		b.WriteString(" ")
		b.WriteString(typeStyle.Render(m.session.decl.Properties[m.selected].Ops.Name()))
		b.WriteString("\n\n")
	}

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
	}

	events := m.session.events.snapshot()
	b.WriteString(fmt.Sprintf("Events (%d, %d updates):\n", len(events), m.session.events.updateCount()))
	if len(events) > visibleEvents {
		events = events[len(events)-visibleEvents:]
	}
	for _, e := range events {
		b.WriteString("  ")
		b.WriteString(eventStyle.Render(e))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case stateSelectProperty:
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • u update • c clear • q quit"))
	case stateEditValue:
		b.WriteString(helpStyle.Render("enter assign • esc back"))
	}

	return b.String()
}

func swatch(c qtypes.Color) string {
	hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("    ")
}
