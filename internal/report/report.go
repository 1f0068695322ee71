// Package report renders a grading outcome for the terminal.
package report

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/rendermark/internal/compare"
	"github.com/abhisek/rendermark/internal/grader"
	"github.com/abhisek/rendermark/internal/question"
	"github.com/abhisek/rendermark/internal/sandbox"
)

// Color palette
var (
	good   = lipgloss.Color("#22C55E") // Green
	middle = lipgloss.Color("#F97316") // Orange
	bad    = lipgloss.Color("#F43F5E") // Rose
	dim    = lipgloss.Color("#94A3B8") // Slate
	text   = lipgloss.Color("#F8FAFC") // White
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(text)

	dimStyle = lipgloss.NewStyle().
			Foreground(dim)

	scoreCard = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder())

	severityStyles = map[compare.Severity]lipgloss.Style{
		compare.SeverityHigh:   lipgloss.NewStyle().Foreground(bad).Bold(true),
		compare.SeverityMedium: lipgloss.NewStyle().Foreground(middle),
		compare.SeverityLow:    lipgloss.NewStyle().Foreground(dim),
	}
)

// consoleTail is the number of trailing console entries shown.
const consoleTail = 10

// Render formats a completed outcome.
func Render(unit *question.Unit, outcome *grader.Outcome, console []sandbox.LogEntry) string {
	var b strings.Builder

	title := unit.ID
	if unit.Title != "" {
		title = unit.Title
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(scoreCard.Foreground(scoreColor(outcome.Score)).Render(fmt.Sprintf("Score: %d / 100", outcome.Score)))
	b.WriteString("\n\n")

	switch {
	case outcome.UserSkipped:
		b.WriteString(dimStyle.Render("No code submitted; user side skipped."))
		b.WriteString("\n")
	case outcome.CompileErr != "":
		b.WriteString(severityStyles[compare.SeverityHigh].Render("Compile error: " + outcome.CompileErr))
		b.WriteString("\n")
	default:
		writeComparison(&b, outcome)
	}

	if outcome.RefError != "" {
		b.WriteString(severityStyles[compare.SeverityHigh].Render("Reference runtime error: " + outcome.RefError))
		b.WriteString("\n")
	}
	if outcome.UserError != "" {
		b.WriteString(severityStyles[compare.SeverityHigh].Render("Runtime error: " + outcome.UserError))
		b.WriteString("\n")
	}

	writeConsole(&b, console)
	return b.String()
}

func writeComparison(b *strings.Builder, outcome *grader.Outcome) {
	if outcome.Result.Equal {
		b.WriteString(lipgloss.NewStyle().Foreground(good).Render("Structurally equal"))
	} else {
		b.WriteString(severityStyles[compare.SeverityHigh].Render("Structural differences"))
	}
	fmt.Fprintf(b, "%s\n", dimStyle.Render(fmt.Sprintf("  (visual similarity %.0f%%)", outcome.VisualRatio*100)))

	for _, d := range outcome.Result.Diffs {
		writeDiff(b, d, 1)
	}
}

func writeDiff(b *strings.Builder, d compare.Diff, depth int) {
	indent := strings.Repeat("  ", depth)
	style := severityStyles[d.Severity]
	b.WriteString(indent)
	b.WriteString(style.Render(fmt.Sprintf("[%s] %s", d.Severity, describe(d))))
	b.WriteString("\n")
	for _, child := range d.Children {
		writeDiff(b, child, depth+1)
	}
}

func describe(d compare.Diff) string {
	switch d.Kind {
	case compare.KindTagName:
		return fmt.Sprintf("tag: expected <%s>, got <%s>", d.Expected, d.Actual)
	case compare.KindTextContent:
		return fmt.Sprintf("text: expected %q, got %q (similarity %.2f)", d.Expected, d.Actual, d.Similarity)
	case compare.KindAttribute:
		return fmt.Sprintf("attribute %s: expected %q, got %q", d.Attribute, d.Expected, d.Actual)
	case compare.KindChildrenCount:
		return fmt.Sprintf("child count: expected %s, got %s", d.Expected, d.Actual)
	case compare.KindChildStructure:
		return fmt.Sprintf("child %d differs", d.Index)
	default:
		return string(d.Kind)
	}
}

func writeConsole(b *strings.Builder, entries []sandbox.LogEntry) {
	if len(entries) == 0 {
		return
	}
	if len(entries) > consoleTail {
		entries = entries[len(entries)-consoleTail:]
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Console output:"))
	b.WriteString("\n")
	for _, e := range entries {
		line := fmt.Sprintf("  [%s] %s", e.Level, e.Message)
		if e.Level == sandbox.LevelError {
			b.WriteString(severityStyles[compare.SeverityHigh].Render(line))
		} else {
			b.WriteString(dimStyle.Render(line))
		}
		b.WriteString("\n")
	}
}

func scoreColor(score int) color.Color {
	switch {
	case score >= 80:
		return good
	case score >= 50:
		return middle
	default:
		return bad
	}
}
