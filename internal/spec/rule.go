// Package spec parses the dirc specification language into a rule tree.
//
// The language is a physical-line, indentation-significant DSL: each line
// declares a subdirectory, an allowed file pattern, or a required literal
// file at the current nesting level. Parsing is a single left-to-right pass
// with one line of lookahead; the output tree depends only on the input
// text, never on filesystem state.
package spec

import "fmt"

// DirectoryRule is one node in the parsed specification tree.
// Name is either a literal directory name or a glob pattern (wildcard when
// it contains *, ? or [). File-classified lines never become rules of their
// own; they land in the parent's FilePatterns or RequiredFiles.
type DirectoryRule struct {
	// Name is the directory name or glob pattern for this rule.
	Name string

	// Subdirs holds child rules in declaration order. Order matters for
	// wildcard ambiguity reporting and the literal/wildcard split.
	Subdirs []*DirectoryRule

	// FilePatterns are normalized glob patterns for allowed file basenames.
	FilePatterns []string

	// RequiredFiles are literal basenames that must exist in this directory.
	// They are implicitly allowed as well.
	RequiredFiles []string
}

// IsWildcard reports whether the rule name is a glob pattern rather than a
// literal directory name.
func (r *DirectoryRule) IsWildcard() bool {
	return HasMagic(r.Name)
}

// Spec is a parsed specification. Root is synthetic, named ".", and exists
// even for an empty document.
type Spec struct {
	Root   *DirectoryRule
	Source string
}

// ParseError is a structural error in the specification text. It carries
// the source identifier and the 1-based line number of the offending line.
type ParseError struct {
	Source string
	Line   int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Msg)
}

func parseErrorf(source string, line int, format string, args ...interface{}) *ParseError {
	return &ParseError{Source: source, Line: line, Msg: fmt.Sprintf(format, args...)}
}
