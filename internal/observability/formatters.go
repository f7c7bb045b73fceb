// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mvella/casabuild/internal/classify"
	"github.com/mvella/casabuild/internal/store"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for verbose mode
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

// PrintBuildStats outputs a human-readable summary of a finished run.
func (p *Printer) PrintBuildStats(rec *store.RunRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder

	status := "FAILED"
	if rec.Success {
		status = "OK"
	}
	sb.WriteString(fmt.Sprintf("Status:      %s\n", status))
	sb.WriteString(fmt.Sprintf("Date:        %s\n", rec.Time().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Properties:  %d\n", rec.PropertiesCount))
	if rec.Reason != "" {
		sb.WriteString(fmt.Sprintf("Reason:      %s\n", rec.Reason))
	}
	if rec.Error != "" {
		sb.WriteString(fmt.Sprintf("Error:       %s\n", rec.Error))
	}
	if rec.GitPush != nil {
		sb.WriteString(fmt.Sprintf("Pushed:      %t\n", *rec.GitPush))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Fetch:       %d ms\n", rec.Stats.FetchMS))
	sb.WriteString(fmt.Sprintf("Parse:       %d ms\n", rec.Stats.ParseMS))
	sb.WriteString(fmt.Sprintf("Render:      %d ms\n", rec.Stats.RenderMS))
	sb.WriteString(fmt.Sprintf("Total:       %d ms", rec.Stats.TotalMS))

	p.printBox("BUILD SUMMARY", sb.String())
}

// PrintCategorySummary outputs the per-category card counts.
func (p *Printer) PrintCategorySummary(counts map[classify.Category]int) {
	if len(counts) == 0 {
		return
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, string(c))
	}
	sort.Strings(categories)

	var sb strings.Builder
	total := 0
	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("%-14s %d\n", c, counts[classify.Category(c)]))
		total += counts[classify.Category(c)]
	}
	sb.WriteString(fmt.Sprintf("%-14s %d", "total", total))

	p.printBox("PROPERTIES BY CATEGORY", sb.String())
}
