// Package compiler lowers a parsed rule tree into a Program: a flat,
// pre-order arena of per-directory check tables shared by the native
// checker and the standalone script emitter.
package compiler

import (
	"github.com/harrison/dirc/internal/spec"
)

// Options configures compilation. The zero value compiles a strict check
// with a lenient root and the built-in ignore entries only.
type Options struct {
	// Ignore lists basename globs that are invisible to every check.
	// ".git" and the spec file's own basename are always appended.
	Ignore []string

	// AllowExtra tolerates unlisted entries in every directory, not just
	// the root.
	AllowExtra bool

	// StrictRoot holds the root directory to the same strictness as
	// declared subdirectories. By default the root tolerates unlisted
	// entries so ambient tooling files do not fail the check.
	StrictRoot bool

	// SpecBasename is the basename of the spec file being compiled, used
	// for the always-on self-ignore. Defaults to ".dirc".
	SpecBasename string
}

// Rule is the compiled form of one directory rule. Children are referenced
// by arena index into Program.Rules; ID is the stable 1-based pre-order
// identifier used to name the rule's tables and routine in emitted output.
type Rule struct {
	ID   int
	Name string

	// AllowedDirs are the names of all children, literal and wildcard.
	AllowedDirs []string
	// AllowedFiles is the union of file patterns and required files.
	AllowedFiles []string
	// RequiredDirs are the literal child names. Wildcard children are
	// optional by construction: they match whatever exists.
	RequiredDirs []string
	// RequiredFiles are literal basenames that must exist.
	RequiredFiles []string

	// LiteralChildren and WildcardChildren partition the children, in
	// declaration order, as arena indices.
	LiteralChildren  []int
	WildcardChildren []int
}

// Program is a compiled specification: the rule arena plus the resolved
// check configuration. Rules[0] is the synthetic root. Programs are built
// once per invocation and read-only afterwards.
type Program struct {
	Rules []Rule

	// Ignore is the effective ignore list: user globs plus ".git" and the
	// spec basename, deduplicated preserving first occurrence.
	Ignore []string

	AllowExtra   bool
	StrictRoot   bool
	SpecBasename string
}

// Root returns the compiled root rule.
func (p *Program) Root() *Rule {
	return &p.Rules[0]
}

// Compile lowers a specification into a Program. It never fails: every
// structural constraint was already enforced by the parser.
func Compile(s *spec.Spec, opts Options) *Program {
	basename := opts.SpecBasename
	if basename == "" {
		basename = ".dirc"
	}

	prog := &Program{
		Ignore:       buildIgnoreList(opts.Ignore, basename),
		AllowExtra:   opts.AllowExtra,
		StrictRoot:   opts.StrictRoot,
		SpecBasename: basename,
	}
	lower(prog, s.Root)
	return prog
}

// lower appends the compiled form of rule to the arena, parent before
// children and siblings in declaration order, and returns its index.
func lower(prog *Program, rule *spec.DirectoryRule) int {
	idx := len(prog.Rules)
	prog.Rules = append(prog.Rules, Rule{
		ID:            idx + 1,
		Name:          rule.Name,
		AllowedFiles:  append(append([]string{}, rule.FilePatterns...), rule.RequiredFiles...),
		RequiredFiles: append([]string{}, rule.RequiredFiles...),
	})

	for _, child := range rule.Subdirs {
		prog.Rules[idx].AllowedDirs = append(prog.Rules[idx].AllowedDirs, child.Name)
		if !child.IsWildcard() {
			prog.Rules[idx].RequiredDirs = append(prog.Rules[idx].RequiredDirs, child.Name)
		}
	}

	// Children allocate arena slots of their own, so the parent slot is
	// addressed by index rather than held across the recursion.
	for _, child := range rule.Subdirs {
		childIdx := lower(prog, child)
		if child.IsWildcard() {
			prog.Rules[idx].WildcardChildren = append(prog.Rules[idx].WildcardChildren, childIdx)
		} else {
			prog.Rules[idx].LiteralChildren = append(prog.Rules[idx].LiteralChildren, childIdx)
		}
	}
	return idx
}

// buildIgnoreList appends the always-on entries and deduplicates while
// preserving first occurrence.
func buildIgnoreList(user []string, specBasename string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pattern := range append(append([]string{}, user...), ".git", specBasename) {
		if pattern == "" || seen[pattern] {
			continue
		}
		seen[pattern] = true
		out = append(out, pattern)
	}
	return out
}
