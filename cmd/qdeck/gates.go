package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"qdeck/circuit"
)

// gateSymbols are the wire glyphs shown next to each gate.
var gateSymbols = map[circuit.Kind]string{
	circuit.CNOT:  "●─⊕",
	circuit.CZ:    "●─●",
	circuit.SWAP:  "×─×",
	circuit.CCNOT: "●─●─⊕",
}

func gateSymbol(k circuit.Kind) string {
	if s, ok := gateSymbols[k]; ok {
		return s
	}
	return gateDisplayName(k)
}

// gateCategories groups the gate table by category in table order.
func gateCategories() ([]string, map[string][]circuit.Kind) {
	var order []string
	byCat := make(map[string][]circuit.Kind)
	for _, k := range circuit.Kinds() {
		cat := k.Category()
		if _, ok := byCat[cat]; !ok {
			order = append(order, cat)
		}
		byCat[cat] = append(byCat[cat], k)
	}
	return order, byCat
}

func renderGates(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Gate Table"))
	sb.WriteString("\n")

	order, byCat := gateCategories()
	for _, cat := range order {
		sb.WriteString("\n")
		sb.WriteString(activeStyle.Render(cat))
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
		sb.WriteString("\n")
		for _, k := range byCat[cat] {
			sb.WriteString("  ")
			sb.WriteString(normalStyle.Render(fmt.Sprintf("%-7s", k.String())))
			sb.WriteString(gateStyle.Render(fmt.Sprintf("%-7s", k.Mnemonic())))
			sb.WriteString(fmt.Sprintf("%d qubit", k.Arity()))
			if k.Arity() > 1 {
				sb.WriteString("s")
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString("  ")
			sb.WriteString(dimStyle.Render(fmt.Sprintf("%-6s", gateSymbol(k))))
			if k.RequiresAngle() {
				sb.WriteString(dimStyle.Render(" (θ)"))
			}
			sb.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, helpBorderStyle.Render(strings.TrimRight(sb.String(), "\n"))+"\n")
	return err
}

func newGatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gates",
		Short: "List the supported gates by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return renderGates(cmd.OutOrStdout())
		},
	}
}
