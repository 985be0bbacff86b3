// Package checker validates a concrete directory tree against a compiled
// Program. The walk is synchronous, depth-first and fail-fast: the first
// violation in check order is reported and nothing else runs. The
// filesystem is only ever read.
package checker

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/harrison/dirc/internal/compiler"
)

// Violation causes, in the order the checks run within one directory.
const (
	CauseMissingDirectory    = "missing directory"
	CauseMissingRequiredDir  = "missing required directory"
	CauseMissingRequiredFile = "missing required file"
	CauseUnexpectedDirectory = "unexpected directory"
	CauseUnexpectedFile      = "unexpected file"
	CauseAmbiguousRule       = "ambiguous directory rule"
)

// Violation is an unsatisfied structural constraint: the expected terminal
// outcome of a failed check, not an internal fault. Path is relative to
// the validated root, without a leading "./".
type Violation struct {
	Cause string
	Path  string
}

func (v *Violation) Error() string {
	return v.Cause + ": " + v.Path
}

// Logger receives trace output during the walk. *logger.ConsoleLogger
// satisfies it.
type Logger interface {
	LogTrace(message string)
}

// Checker runs a compiled Program against one filesystem root.
type Checker struct {
	prog    *compiler.Program
	rootDir string
	log     Logger
}

// New creates a Checker for the given program and root directory.
func New(prog *compiler.Program, rootDir string) *Checker {
	return &Checker{prog: prog, rootDir: rootDir}
}

// SetLogger attaches a trace logger. A nil logger disables tracing.
func (c *Checker) SetLogger(log Logger) {
	c.log = log
}

// Run walks the tree from the root rule. It returns nil when every
// required entry exists and no disallowed or ambiguous entry was found,
// a *Violation for the first failed check, or a wrapped I/O error.
func (c *Checker) Run() error {
	return c.checkRule(0, ".")
}

// checkRule validates the directory bound to rel against the rule at
// arena index idx, then recurses into literal and wildcard children.
func (c *Checker) checkRule(idx int, rel string) error {
	rule := &c.prog.Rules[idx]
	path := filepath.Join(c.rootDir, rel)
	c.trace("checking %s (rule %d)", rel, rule.ID)

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return &Violation{Cause: CauseMissingDirectory, Path: rel}
	}

	for _, name := range rule.RequiredDirs {
		sub, err := os.Stat(filepath.Join(path, name))
		if err != nil || !sub.IsDir() {
			return &Violation{Cause: CauseMissingRequiredDir, Path: joinRel(rel, name)}
		}
	}

	for _, name := range rule.RequiredFiles {
		f, err := os.Stat(filepath.Join(path, name))
		if err != nil || f.IsDir() {
			return &Violation{Cause: CauseMissingRequiredFile, Path: joinRel(rel, name)}
		}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("failed to list directory %s: %w", rel, err)
	}

	allowExtra := c.prog.AllowExtra || (rel == "." && !c.prog.StrictRoot)

	for _, entry := range entries {
		base := entry.Name()
		if c.ignored(base) {
			continue
		}
		if entry.IsDir() {
			if !matchAny(base, rule.AllowedDirs) && !allowExtra {
				return &Violation{Cause: CauseUnexpectedDirectory, Path: joinRel(rel, base)}
			}
		} else {
			if !matchAny(base, rule.AllowedFiles) && !allowExtra {
				return &Violation{Cause: CauseUnexpectedFile, Path: joinRel(rel, base)}
			}
		}
	}

	// Literal children recurse unconditionally; their existence was just
	// guaranteed by the required-directory pass.
	for _, childIdx := range rule.LiteralChildren {
		child := &c.prog.Rules[childIdx]
		if err := c.checkRule(childIdx, joinRel(rel, child.Name)); err != nil {
			return err
		}
	}

	if len(rule.WildcardChildren) > 0 {
		if err := c.checkWildcards(rule, rel, entries); err != nil {
			return err
		}
	}
	return nil
}

// checkWildcards binds actual subdirectories to wildcard child rules.
// Each remaining subdirectory must match at most one wildcard pattern;
// matching more than one is a hard failure, never first-match-wins. A
// subdirectory matching none was already handled by the parent's
// allowed-name scan.
func (c *Checker) checkWildcards(rule *compiler.Rule, rel string, entries []os.DirEntry) error {
	literals := make(map[string]bool, len(rule.RequiredDirs))
	for _, name := range rule.RequiredDirs {
		literals[name] = true
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		base := entry.Name()
		if c.ignored(base) || literals[base] {
			continue
		}

		matched := -1
		for _, childIdx := range rule.WildcardChildren {
			if !match(c.prog.Rules[childIdx].Name, base) {
				continue
			}
			if matched >= 0 {
				return &Violation{Cause: CauseAmbiguousRule, Path: joinRel(rel, base)}
			}
			matched = childIdx
		}
		if matched >= 0 {
			if err := c.checkRule(matched, joinRel(rel, base)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Checker) ignored(base string) bool {
	return matchAny(base, c.prog.Ignore)
}

func (c *Checker) trace(format string, args ...interface{}) {
	if c.log != nil {
		c.log.LogTrace(fmt.Sprintf(format, args...))
	}
}

// match tests a basename against one glob pattern. Patterns were validated
// at parse time, so a match error cannot occur for compiled rules; user
// ignore globs are validated by the CLI before compilation.
func match(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}

func matchAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if match(pattern, name) {
			return true
		}
	}
	return false
}

// joinRel joins a relative path and a basename without introducing a
// leading "./" for root-level entries.
func joinRel(rel, name string) string {
	if rel == "." {
		return name
	}
	return rel + "/" + name
}
