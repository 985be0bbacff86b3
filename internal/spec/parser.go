package spec

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// tabWidth is the fixed expansion width for leading tabs, applied before
// indentation is measured so mixed tabs and spaces behave predictably.
const tabWidth = 4

// ParseFile reads and parses a specification file. The file path becomes
// the source identifier in any ParseError.
func ParseFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	return Parse(string(data), path)
}

// Parse parses specification text into a rule tree. source identifies the
// input in error messages (a file path, or "<spec>" style placeholder).
// On any structural error no partial tree is returned.
func Parse(text, source string) (*Spec, error) {
	root := &DirectoryRule{Name: "."}
	stack := []*DirectoryRule{root}

	indentUnit := 0
	// Level of the most recent file-classified line, or -1. A line indented
	// deeper than a file leaf is a structural error: file leaves own no
	// children.
	lastFileLevel := -1

	rawLines := splitLines(text)

	for idx0, raw := range rawLines {
		idx := idx0 + 1
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(raw, " \t"), "#") {
			continue
		}

		expanded := expandTabs(raw, tabWidth)
		indent := len(expanded) - len(strings.TrimLeft(expanded, " "))
		content := strings.TrimRight(stripInlineComment(expanded[indent:]), " \t")
		if content == "" {
			continue
		}
		content = strings.TrimSpace(content)

		level := 0
		if indent > 0 {
			if indentUnit == 0 {
				indentUnit = indent
			}
			if indentUnit <= 0 {
				return nil, parseErrorf(source, idx, "invalid indentation")
			}
			if indent%indentUnit != 0 {
				return nil, parseErrorf(source, idx, "indentation must be a multiple of %d spaces", indentUnit)
			}
			level = indent / indentUnit
		}

		if lastFileLevel >= 0 && level > lastFileLevel {
			return nil, parseErrorf(source, idx, "file patterns cannot have children")
		}

		for len(stack) > level+1 {
			stack = stack[:len(stack)-1]
		}
		if len(stack) != level+1 {
			return nil, parseErrorf(source, idx, "indentation jumps are not allowed")
		}
		parent := stack[len(stack)-1]

		// A trailing slash forces directory interpretation, disambiguating
		// dot-directories like ".github/".
		dirForced := strings.HasSuffix(content, "/") && content != "/"
		if dirForced {
			content = content[:len(content)-1]
		}

		hasChildren := nextLineIsDeeper(rawLines, idx0, indent, indentUnit, level)

		if !dirForced && !hasChildren && isFilePattern(content) {
			pattern := NormalizePattern(content)
			if !doublestar.ValidatePattern(pattern) {
				return nil, parseErrorf(source, idx, "invalid file pattern: %s", content)
			}
			parent.FilePatterns = append(parent.FilePatterns, pattern)
			lastFileLevel = level
			continue
		}

		// Required literal file: dotted name with no glob or brace syntax,
		// e.g. "Makefile.in" or "cmd-must.sh".
		if !dirForced && !hasChildren && strings.Contains(content, ".") &&
			!HasMagic(content) && !strings.Contains(content, "{") {
			parent.RequiredFiles = append(parent.RequiredFiles, content)
			lastFileLevel = level
			continue
		}

		if HasMagic(content) && !doublestar.ValidatePattern(content) {
			return nil, parseErrorf(source, idx, "invalid directory pattern: %s", content)
		}
		child := &DirectoryRule{Name: content}
		parent.Subdirs = append(parent.Subdirs, child)
		stack = append(stack, child)
		lastFileLevel = -1
	}

	return &Spec{Root: root, Source: source}, nil
}

// splitLines splits on newlines, tolerating CRLF endings.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// expandTabs replaces each tab with spaces up to the next tab stop.
func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\t':
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case '\n', '\r':
			b.WriteRune(r)
			col = 0
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// stripInlineComment truncates at a '#' that starts the line or follows
// whitespace. A '#' embedded in a token (e.g. "file#1.txt") is kept.
func stripInlineComment(s string) string {
	for j := 0; j < len(s); j++ {
		if s[j] == '#' && (j == 0 || s[j-1] == ' ' || s[j-1] == '\t') {
			return strings.TrimRight(s[:j], " \t")
		}
	}
	return s
}

// nextLineIsDeeper looks ahead to the next non-blank, non-comment line and
// reports whether it would nest under the current line. Before the indent
// unit is known, any deeper indentation counts; afterwards only a valid
// multiple that lands on a deeper level does.
func nextLineIsDeeper(lines []string, current, indent, indentUnit, level int) bool {
	for j := current + 1; j < len(lines); j++ {
		candidate := lines[j]
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(candidate, " \t"), "#") {
			continue
		}
		expanded := expandTabs(candidate, tabWidth)
		nextIndent := len(expanded) - len(strings.TrimLeft(expanded, " "))
		if indentUnit == 0 {
			return nextIndent > indent
		}
		return nextIndent > indent && nextIndent%indentUnit == 0 &&
			nextIndent/indentUnit > level
	}
	return false
}
