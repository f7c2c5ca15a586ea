package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"qdeck/circuit"
	"qdeck/qasm"
)

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres s within width visible columns using fill.
func padCenter(s string, width int, fill string) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, width-w-left)
}

// gateDisplayName returns a short box label for a gate.
func gateDisplayName(k circuit.Kind) string {
	switch k {
	case circuit.Sdg:
		return "S†"
	case circuit.Tdg:
		return "T†"
	case circuit.Phase:
		return "P"
	default:
		return strings.ToUpper(k.Mnemonic())
	}
}

type cellRole int

const (
	roleWire cellRole = iota
	roleBox
	roleControl
	roleTarget
	roleSwap
	rolePass
	roleMeasure
)

// cellInfo describes what occupies one (layer, qubit) cell.
type cellInfo struct {
	role      cellRole
	name      string
	angle     string
	vertAbove bool
	vertBelow bool
}

// layerCells lays out one layer. Gates in a layer never share a wire span,
// so each cell has at most one occupant.
func layerCells(c *circuit.Circuit, layer circuit.Layer) []cellInfo {
	cells := make([]cellInfo, c.NumQubits())
	for _, i := range layer {
		g := c.Gate(i)
		if len(g.Qubits) == 1 {
			cell := cellInfo{role: roleBox, name: gateDisplayName(g.Kind)}
			if g.Angle != nil {
				cell.angle = qasm.PrettyAngle(*g.Angle)
			}
			cells[g.Qubits[0]] = cell
			continue
		}

		lo, hi := g.Qubits[0], g.Qubits[0]
		for _, q := range g.Qubits {
			lo, hi = min(lo, q), max(hi, q)
		}
		for q := lo; q <= hi; q++ {
			cells[q] = cellInfo{role: rolePass, vertAbove: q > lo, vertBelow: q < hi}
		}

		last := len(g.Qubits) - 1
		for j, q := range g.Qubits {
			role := roleControl
			switch {
			case g.Kind == circuit.SWAP:
				role = roleSwap
			case g.Kind == circuit.CZ:
				role = roleControl
			case j == last:
				role = roleTarget
			}
			cells[q].role = role
		}
	}
	return cells
}

// renderCell returns 3 lines (top, mid, bot), each cellW visible columns wide.
func renderCell(info cellInfo) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)
	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	wireWith := func(sym string) string {
		return strings.Repeat("─", dashL) + sym + strings.Repeat("─", dashR)
	}

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch info.role {
	case roleBox, roleMeasure:
		boxW := gateNameW + 2
		margin := (cellW - boxW) / 2
		rightMargin := cellW - margin - boxW
		under := strings.Repeat("─", gateNameW)
		if info.angle != "" {
			under = padCenter(info.angle, gateNameW, "─")
		}
		top = strings.Repeat(" ", margin) + gateStyle.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + gateStyle.Render("┤"+padCenter(info.name, gateNameW, " ")+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + gateStyle.Render("└"+under+"┘") + strings.Repeat(" ", rightMargin)
		if info.role == roleMeasure {
			bot = strings.Repeat(" ", halfW) + cbitWireStyle.Render("║") + strings.Repeat(" ", cellW-halfW-1)
		}
	case roleControl:
		mid = wireWith(gateStyle.Render("●"))
	case roleTarget:
		mid = wireWith(gateStyle.Render("⊕"))
	case roleSwap:
		mid = wireWith(gateStyle.Render("×"))
	case rolePass:
		mid = wireWith("┼")
	default:
		mid = strings.Repeat("─", cellW)
	}
	return top, mid, bot
}

// renderDiagram draws c layer by layer, closing with the implicit
// measurement column and the classical register.
func renderDiagram(c *circuit.Circuit) string {
	layers := c.Layers()
	n := c.NumQubits()

	columns := make([][]cellInfo, 0, len(layers)+1)
	for _, layer := range layers {
		columns = append(columns, layerCells(c, layer))
	}
	measure := make([]cellInfo, n)
	for q := range measure {
		measure[q] = cellInfo{role: roleMeasure, name: "M", vertAbove: q > 0}
	}
	columns = append(columns, measure)

	var sb strings.Builder
	header := strings.Repeat(" ", labelVisualW)
	for i := range layers {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", i), cellW, " "))
	}
	sb.WriteString(header + "\n")

	for q := range n {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", q))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)
		for _, col := range columns {
			top, mid, bot := renderCell(col[q])
			topLine += top
			midLine += mid
			botLine += bot
		}
		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}

	dashL := (cellW - 1) / 2
	label := fmt.Sprintf("%d", n)
	cbitLine := cbitLabelStyle.Render(fmt.Sprintf("%-5s", "c")) + cbitWireStyle.Render("══")
	cbitLine += cbitWireStyle.Render(strings.Repeat("═", cellW*len(layers)+dashL))
	cbitLine += cbitLabelStyle.Render("╩" + label)
	cbitLine += cbitWireStyle.Render(strings.Repeat("═", max(cellW-dashL-1-len(label), 0)))
	sb.WriteString(cbitLine)

	return sb.String()
}
