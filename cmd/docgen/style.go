// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/docgen/pkg/types"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FB950"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#D29922"))
	errStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// printResult writes a short human-readable summary of one render.
func printResult(w io.Writer, res *types.RenderResult) {
	if !res.Success {
		fmt.Fprintf(w, "%s %s: %s\n", errStyle.Render("failed"), res.Template, res.Error)
		return
	}

	fmt.Fprintf(w, "%s %s -> %s %s\n",
		okStyle.Render("rendered"), res.Template, res.OutputPath,
		dimStyle.Render(fmt.Sprintf("(%s, %s)", res.Format, res.Duration.Round(time.Millisecond))))
	if len(res.Unresolved) > 0 {
		fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("unresolved:"), strings.Join(res.Unresolved, ", "))
	}
	for _, d := range res.Diagnostics {
		if d.Kind == types.DiagUnresolved {
			continue
		}
		printDiagnostic(w, d)
	}
}

func printDiagnostic(w io.Writer, d types.Diagnostic) {
	loc := ""
	if d.Line > 0 {
		loc = fmt.Sprintf("line %d: ", d.Line)
	}
	fmt.Fprintf(w, "  %s %s%s\n", warnStyle.Render(string(d.Kind)+":"), loc, d.Message)
}

// printTable writes rows under a styled header, padding columns to the
// widest visible cell.
func printTable(w io.Writer, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if i == len(cells)-1 {
				parts[i] = cell
				continue
			}
			parts[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		return strings.Join(parts, "  ")
	}

	fmt.Fprintln(w, headerStyle.Render(line(header)))
	for _, r := range rows {
		fmt.Fprintln(w, line(r))
	}
}
