package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/profile-optimizer/internal/selection"
	"github.com/jonathan/profile-optimizer/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for CLI commands.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func writeList(sb *strings.Builder, label string, items []string) {
	sb.WriteString(label + "\n")
	shown := items
	if len(shown) > maxItemsToShow {
		shown = shown[:maxItemsToShow]
	}
	for _, item := range shown {
		sb.WriteString(fmt.Sprintf("  - %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// PrintAnalysis outputs a human-readable summary of an analysis result.
func (p *Printer) PrintAnalysis(result *types.AnalysisResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall score: %d/100\n\n", result.OverallScore))
	sb.WriteString(fmt.Sprintf("Headline:     %3d\n", result.SectionScores.Headline))
	sb.WriteString(fmt.Sprintf("Summary:      %3d\n", result.SectionScores.Summary))
	sb.WriteString(fmt.Sprintf("Experience:   %3d\n", result.SectionScores.Experience))
	sb.WriteString(fmt.Sprintf("Skills:       %3d\n", result.SectionScores.Skills))
	sb.WriteString(fmt.Sprintf("Completeness: %3d\n", result.SectionScores.Completeness))
	sb.WriteString(fmt.Sprintf("Engagement:   %3d\n\n", result.SectionScores.Engagement))

	writeList(&sb, "Strengths:", result.Strengths)
	writeList(&sb, "Weaknesses:", result.Weaknesses)
	writeList(&sb, "Recommendations:", result.Recommendations)

	p.printBox("Profile Analysis", sb.String())
}

// PrintOptimization outputs a human-readable summary of an optimization
// result.
func (p *Printer) PrintOptimization(result *types.OptimizationResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Improvements: %d\n", len(result.Improvements)))
	sb.WriteString(fmt.Sprintf("Score: %d -> %d (+%d)\n\n",
		result.ScoreImprovement.Before,
		result.ScoreImprovement.After,
		result.ScoreImprovement.Increase))

	for i, imp := range result.Improvements {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("... and %d more\n", len(result.Improvements)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("[%s] %s\n", imp.Impact, imp.Section))
		sb.WriteString(fmt.Sprintf("  %s\n", imp.Optimized))
	}

	p.printBox("Profile Optimization", sb.String())
}

// PrintModels outputs the available model catalog.
func (p *Printer) PrintModels(models []selection.ModelInfo) {
	var sb strings.Builder
	if len(models) == 0 {
		sb.WriteString("No providers configured.\n")
	}
	for _, m := range models {
		sb.WriteString(fmt.Sprintf("%-12s %s (%s)\n", m.ID, m.Name, m.Provider))
	}
	p.printBox("Available Models", sb.String())
}
