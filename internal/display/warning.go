// Package display renders user-facing output for dirc: warnings about
// questionable specs and the final check verdict.
package display

import (
	"fmt"
	"io"
	"strings"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related rule names or paths (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("\x1b[33m")
	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Items) > 0 {
		for i, item := range w.Items {
			b.WriteString("      ")
			b.WriteString(fmt.Sprintf("%d. %s", i+1, item))
			b.WriteString("\n")
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	b.WriteString("\x1b[0m")
	fmt.Fprint(out, b.String())
}

// WarnDuplicateRules creates a warning for duplicate sibling rule names.
// Duplicates are legal (all lookups are set membership) but usually
// indicate a copy-paste mistake in the spec.
func WarnDuplicateRules(specPath string, names []string) Warning {
	return Warning{
		Title:   fmt.Sprintf("Duplicate sibling rules in %s", specPath),
		Message: "Duplicate rules overlap; the check behaves as if each name appeared once",
		Items:   names,
	}
}

// Pass writes the success verdict.
func Pass(out io.Writer, root string) {
	fmt.Fprintf(out, "\x1b[32m✓\x1b[0m Directory structure is valid: %s\n", root)
}

// Fail writes the failure verdict for a violation message.
func Fail(out io.Writer, message string) {
	fmt.Fprintf(out, "\x1b[31m✗\x1b[0m %s\n", message)
}
