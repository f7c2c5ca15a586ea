package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qdeck/runner"
)

// focus represents which panel has keyboard input.
type focus int

const (
	focusCounts focus = iota
	focusCircuit
	focusQASM
	numFocus
)

// runFunc executes one request; the viewer uses it to re-run edited QASM.
type runFunc func(context.Context, runner.Request) (*runner.Result, error)

// resultMsg carries a finished re-run back into Update.
type resultMsg struct {
	res *runner.Result
	err error
}

// Model is the results viewer: circuit diagram, editable QASM and a counts
// table.
type Model struct {
	ctx  context.Context // re-runs stop with the program
	run  runFunc
	base runner.Request // shots and seed reused by re-runs

	res       *runner.Result
	counts    table.Model
	diagram   viewport.Model
	qasmInput textarea.Model
	lastQASM  string

	focus     focus
	width     int
	height    int
	showHelp  bool
	running   bool
	statusMsg string
}

func newModel(ctx context.Context, res *runner.Result, base runner.Request, run runFunc) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.SetWidth(40)
	ta.SetHeight(12)

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Outcome", Width: 10},
			{Title: "Count", Width: 8},
			{Title: "Prob", Width: 8},
			{Title: "", Width: barW},
		}),
		table.WithFocused(true),
		table.WithHeight(8),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.Foreground(lipgloss.Color("#ff9e64")).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("#1a1b26")).Background(lipgloss.Color("#73daca"))
	t.SetStyles(s)

	m := Model{
		ctx:       ctx,
		run:       run,
		base:      base,
		counts:    t,
		diagram:   viewport.New(60, 12),
		qasmInput: ta,
		focus:     focusCounts,
	}
	m.setResult(res)
	return m
}

func (m *Model) setResult(res *runner.Result) {
	m.res = res

	hist := histogram(res.Counts)
	rows := make([]table.Row, len(hist))
	for i, h := range hist {
		rows[i] = table.Row{
			h.outcome,
			strconv.Itoa(h.count),
			fmt.Sprintf("%.2f%%", 100*h.prob),
			bar(h.prob, barW),
		}
	}
	m.counts.SetRows(rows)
	m.counts.SetCursor(0)

	m.diagram.SetContent(renderDiagram(res.Circuit))
	m.diagram.GotoTop()

	m.qasmInput.SetValue(res.QASM)
	m.lastQASM = res.QASM
}

// rerun parses the editor contents and runs them with the original shots
// and seed.
func (m *Model) rerun() tea.Cmd {
	text := m.qasmInput.Value()
	if text == m.lastQASM {
		m.statusMsg = "QASM unchanged"
		return nil
	}
	req, err := requestFromQASM(text)
	if err != nil {
		m.statusMsg = "Parse error: " + err.Error()
		return nil
	}
	req.Shots = m.base.Shots
	req.Seed = m.base.Seed
	req.KeepState = m.base.KeepState

	m.running = true
	m.statusMsg = "Running..."
	ctx, run := m.ctx, m.run
	return func() tea.Msg {
		res, err := run(ctx, req)
		return resultMsg{res: res, err: err}
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.counts.Blur()
	m.qasmInput.Blur()
	switch f {
	case focusCounts:
		m.counts.Focus()
	case focusQASM:
		m.qasmInput.Focus()
	}
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		qasmW := max(msg.Width/3-4, 24)
		topH := max(msg.Height/2-2, 6)
		m.qasmInput.SetWidth(qasmW)
		m.qasmInput.SetHeight(topH - 2)
		m.diagram.Width = max(msg.Width-qasmW-10, 20)
		m.diagram.Height = topH - 2
		m.counts.SetHeight(max(msg.Height-topH-9, 3))
		return m, nil

	case resultMsg:
		m.running = false
		if msg.err != nil {
			m.statusMsg = "Run failed: " + msg.err.Error()
			return m, nil
		}
		m.setResult(msg.res)
		m.statusMsg = fmt.Sprintf("Re-ran as %s", msg.res.RunID)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}
		if key == "ctrl+r" {
			if m.running {
				return m, nil
			}
			return m, m.rerun()
		}
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}

		if m.focus == focusQASM {
			switch key {
			case "esc":
				m.setFocus(focusCounts)
				return m, nil
			case "tab":
				m.setFocus((m.focus + 1) % numFocus)
				return m, nil
			}
			m.qasmInput, cmd = m.qasmInput.Update(msg)
			return m, cmd
		}

		switch key {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "tab":
			m.setFocus((m.focus + 1) % numFocus)
			return m, nil
		}

		switch m.focus {
		case focusCounts:
			m.counts, cmd = m.counts.Update(msg)
		case focusCircuit:
			m.diagram, cmd = m.diagram.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

// ──────────────────────────── View ────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	circuitPanel := m.renderPanel(circuitStyle, "Quantum Circuit", focusCircuit, m.diagram.View())
	qasmPanel := m.renderPanel(qasmStyle, "QASM Editor", focusQASM, m.qasmInput.View())
	title := fmt.Sprintf("Counts (%d shots)", m.res.Shots)
	countsPanel := m.renderPanel(countsStyle, title, focusCounts, m.counts.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, qasmPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, countsPanel, m.renderControlsPanel())

	if m.showHelp {
		frame = overlayAt(frame, m.renderHelp(), 4, 2)
	}
	return frame
}

func (m Model) renderPanel(style lipgloss.Style, title string, f focus, body string) string {
	if m.focus == f {
		title += " [ACTIVE]"
	}
	return style.Render(titleStyle.Render(title) + "\n\n" + body)
}

// renderControlsPanel renders the bottom help/status bar.
func (m Model) renderControlsPanel() string {
	var sb strings.Builder
	sb.WriteString(activeStyle.Render("Keys: "))
	sb.WriteString("Tab Switch panel  ↑↓ Scroll  ^R Re-run QASM  ? Help  q/^C Quit")
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "run %s  depth %d  took %s", m.res.RunID, m.res.Depth, m.res.Duration)
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeStyle.Render(m.statusMsg))
	}
	return controlsStyle.Width(max(m.width-4, 20)).Render(sb.String())
}

// renderHelp renders the floating help popup.
func (m Model) renderHelp() string {
	entries := []struct{ key, desc string }{
		{"Tab", "cycle counts, circuit and QASM panels"},
		{"↑↓ / jk", "move through counts or scroll the circuit"},
		{"Esc", "leave the QASM editor"},
		{"^R", "run the edited QASM with the same shots and seed"},
		{"q / ^C", "quit"},
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Help"))
	sb.WriteString("\n\n")
	for _, e := range entries {
		sb.WriteString(selectedStyle.Render(fmt.Sprintf(" %-8s", e.key)))
		sb.WriteString(normalStyle.Render(e.desc))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" any key closes"))
	return helpBorderStyle.Render(sb.String())
}
