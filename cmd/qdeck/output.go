package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"qdeck/engine"
	"qdeck/runner"
	"qdeck/sampler"
)

// maxAmplitudeRows bounds the amplitude listing of --state.
const maxAmplitudeRows = 32

type histRow struct {
	outcome string
	count   int
	prob    float64
}

// histogram orders outcomes as basis indices, qubit n-1 first.
func histogram(counts sampler.Counts) []histRow {
	total := counts.Total()
	rows := make([]histRow, 0, len(counts))
	for outcome, n := range counts {
		rows = append(rows, histRow{outcome: outcome, count: n, prob: float64(n) / float64(total)})
	}
	slices.SortFunc(rows, func(a, b histRow) int { return strings.Compare(a.outcome, b.outcome) })
	return rows
}

// bar scales frac of width to block characters.
func bar(frac float64, width int) string {
	n := int(math.Round(frac * float64(width)))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func writeJSON(w io.Writer, res *runner.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(res), "encode result")
}

func writeText(w io.Writer, res *runner.Result, showState bool) error {
	var sb strings.Builder

	sb.WriteString(circuitStyle.Render(titleStyle.Render("Quantum Circuit") + "\n\n" + renderDiagram(res.Circuit)))
	sb.WriteString("\n")

	var counts strings.Builder
	counts.WriteString(titleStyle.Render(fmt.Sprintf("Counts (%d shots)", res.Shots)))
	counts.WriteString("\n\n")
	for _, row := range histogram(res.Counts) {
		fmt.Fprintf(&counts, "%s %6d %6.2f%% %s\n",
			qubitLabelStyle.Render(row.outcome), row.count, 100*row.prob, barStyle.Render(bar(row.prob, barW)))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		countsStyle.Render(strings.TrimRight(counts.String(), "\n")),
		qasmStyle.Render(titleStyle.Render("QASM")+"\n\n"+strings.TrimRight(res.QASM, "\n")),
	))
	sb.WriteString("\n")

	if showState && res.State != nil {
		sb.WriteString(countsStyle.Render(renderState(res.State)))
		sb.WriteString("\n")
	}

	sb.WriteString(dimStyle.Render(fmt.Sprintf("run %s  depth %d  took %s", res.RunID, res.Depth, res.Duration)))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return errors.Wrap(err, "write result")
}

// renderState lists per-qubit reduced state figures and the largest basis
// amplitudes.
func renderState(sv *engine.Statevector) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Final State"))
	sb.WriteString("\n\n")
	sb.WriteString(activeStyle.Render(fmt.Sprintf("%-6s %7s %24s %7s %7s", "qubit", "P(1)", "bloch (x, y, z)", "purity", "S")))
	sb.WriteString("\n")

	probs := sv.QubitProbabilities()
	for q := range sv.NumQubits() {
		b := sv.Bloch(q)
		fmt.Fprintf(&sb, "%-6s %7.4f %24s %7.4f %7.4f\n",
			fmt.Sprintf("q[%d]", q), probs[q].Prob1,
			fmt.Sprintf("(%+.3f, %+.3f, %+.3f)", b.X, b.Y, b.Z),
			sv.Purity(q), sv.Entropy(q))
	}

	sb.WriteString("\n")
	sb.WriteString(activeStyle.Render(fmt.Sprintf("%-*s %22s %7s %8s", max(sv.NumQubits(), 5), "basis", "amplitude", "prob", "phase")))
	states := sv.NonZero(1e-12)
	slices.SortStableFunc(states, func(a, b engine.BasisAmplitude) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return 0
	})
	for i, s := range states {
		if i == maxAmplitudeRows {
			sb.WriteString("\n" + dimStyle.Render(fmt.Sprintf("… %d more", len(states)-i)))
			break
		}
		fmt.Fprintf(&sb, "\n%-*s %22s %7.4f %8.4f",
			max(sv.NumQubits(), 5), s.Bits,
			fmt.Sprintf("%+.4f%+.4fi", real(s.Amplitude), imag(s.Amplitude)),
			s.Probability, s.Phase)
	}
	return sb.String()
}
