package main

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerLayout(t *testing.T) {
	r, req, res := runBell(t, true)
	m := newModel(context.Background(), res, req, r.Run)
	assert.Equal(t, "Loading...", m.View())

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 48})
	view := m.View()
	assert.Contains(t, view, "Quantum Circuit")
	assert.Contains(t, view, "QASM Editor")
	assert.Contains(t, view, "Counts (200 shots) [ACTIVE]")
	assert.Contains(t, view, res.RunID.String())
}

func TestViewerFocusAndHelp(t *testing.T) {
	r, req, res := runBell(t, false)
	m := newModel(context.Background(), res, req, r.Run)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 48})

	m, _ = update(t, m, key("tab"))
	assert.Equal(t, focusCircuit, m.focus)
	m, _ = update(t, m, key("tab"))
	assert.Equal(t, focusQASM, m.focus)
	assert.True(t, m.qasmInput.Focused())

	// Typing q in the editor does not quit
	m, _ = update(t, m, key("q"))
	assert.Equal(t, focusQASM, m.focus)
	assert.True(t, strings.HasSuffix(m.qasmInput.Value(), "q"))

	m, _ = update(t, m, key("esc"))
	assert.Equal(t, focusCounts, m.focus)
	assert.False(t, m.qasmInput.Focused())

	m, _ = update(t, m, key("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "any key closes")
	m, _ = update(t, m, key("j"))
	assert.False(t, m.showHelp)

	_, cmd := update(t, m, key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestViewerRerun(t *testing.T) {
	r, req, res := runBell(t, false)
	m := newModel(context.Background(), res, req, r.Run)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 48})

	m, cmd := update(t, m, key("ctrl+r"))
	assert.Nil(t, cmd)
	assert.Equal(t, "QASM unchanged", m.statusMsg)

	m.qasmInput.SetValue("qreg q[2];\nbogus q[0];")
	m, cmd = update(t, m, key("ctrl+r"))
	assert.Nil(t, cmd)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Parse error"))

	m.qasmInput.SetValue("OPENQASM 2.0;\nqreg q[2];\nx q[1];\n")
	m, cmd = update(t, m, key("ctrl+r"))
	require.NotNil(t, cmd)
	assert.True(t, m.running)

	m, _ = update(t, m, cmd())
	assert.False(t, m.running)
	assert.Equal(t, map[string]int{"10": 200}, map[string]int(m.res.Counts))
	assert.Contains(t, m.res.QASM, "x q[1];")
	assert.NotEqual(t, res.RunID, m.res.RunID)
	assert.Equal(t, m.res.QASM, m.qasmInput.Value())
}

func TestViewerRerunUsesProgramContext(t *testing.T) {
	r, req, res := runBell(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newModel(ctx, res, req, r.Run)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 48})

	m.qasmInput.SetValue("OPENQASM 2.0;\nqreg q[2];\nx q[0];\n")
	m, cmd := update(t, m, key("ctrl+r"))
	require.NotNil(t, cmd)

	m, _ = update(t, m, cmd())
	assert.False(t, m.running)
	assert.True(t, strings.HasPrefix(m.statusMsg, "Run failed"))
	assert.Contains(t, m.statusMsg, context.Canceled.Error())
	assert.Equal(t, res.RunID, m.res.RunID)
}
