// Package observability provides logging, metrics, and formatted output utilities
// for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/chat-resume/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
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
		if len([]rune(line)) > boxWidth-4 {
			line = string([]rune(line)[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintRecord outputs a human-readable summary of a generated record.
func (p *Printer) PrintRecord(record *types.ResumeRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:     %s\n", record.PersonalInfo.Name))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", record.PersonalInfo.Email))
	if record.PersonalInfo.Location != "" {
		sb.WriteString(fmt.Sprintf("Location: %s\n", record.PersonalInfo.Location))
	}

	sb.WriteString("\nExperience:\n")
	for i, exp := range record.Experience {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(record.Experience)-maxItemsToShow))
			break
		}
		end := exp.EndDate
		if end == "" {
			end = "?"
		}
		sb.WriteString(fmt.Sprintf("  • %s @ %s (%s - %s)\n", exp.Title, exp.Company, exp.StartDate, end))
	}

	sb.WriteString("\nEducation:\n")
	for i, edu := range record.Education {
		if i >= maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(record.Education)-maxItemsToShow))
			break
		}
		sb.WriteString(fmt.Sprintf("  • %s, %s\n", edu.Degree, edu.Institution))
	}

	sb.WriteString("\nSkills:\n")
	for _, cat := range record.Skills {
		sb.WriteString(fmt.Sprintf("  %s: %d items\n", cat.Category, len(cat.Items)))
	}

	sb.WriteString(fmt.Sprintf("\nProjects: %d  Certifications: %d", len(record.Projects), len(record.Certifications)))

	p.printBox("GENERATED RESUME", sb.String())
}

// PrintViolations outputs any schema violations found.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintViolations(violations types.Violations) {
	if len(violations) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO VIOLATIONS FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d violations:\n\n", len(violations)))

	for i, v := range violations {
		path := v.FieldPath
		if path == "" {
			path = "(document)"
		}
		sb.WriteString(fmt.Sprintf("⚠ %s\n", path))
		sb.WriteString(fmt.Sprintf("  %s\n", v.Message))
		if i < len(violations)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("SCHEMA VIOLATIONS", sb.String())
}
