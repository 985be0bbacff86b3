package spec

import (
	"regexp"
	"strings"
)

var (
	globMagic    = regexp.MustCompile(`[*?[]`)
	extShorthand = regexp.MustCompile(`^\.[A-Za-z0-9]{1,5}$`)
	whitespace   = regexp.MustCompile(`\s+`)
	braceList    = regexp.MustCompile(`\{([^}]*)\}`)
)

// HasMagic reports whether s contains glob metacharacters (*, ? or [).
// Brace lists alone do not count as magic; they only appear in file
// patterns, which are classified separately.
func HasMagic(s string) bool {
	return globMagic.MatchString(s)
}

// isFilePattern reports whether a leaf token should be read as an allowed
// file pattern: a leading-dot extension shorthand of 1-5 alphanumerics
// (".png"), or anything containing glob or brace syntax.
func isFilePattern(token string) bool {
	token = strings.TrimSpace(token)
	return extShorthand.MatchString(token) ||
		strings.ContainsAny(token, "*?[{")
}

// NormalizePattern canonicalizes a file-pattern token:
//
//	"*.*"            -> "*"        (any basename, dotted or not)
//	".ext"           -> "*.ext"
//	"a. {x, y,}"     -> internal whitespace collapsed, empty brace
//	                    alternatives dropped
//
// Brace lists stay in brace form; backends that cannot match braces
// directly (the bash emitter) rewrite them at emission time.
func NormalizePattern(raw string) string {
	s := whitespace.ReplaceAllString(strings.TrimSpace(raw), "")
	if s == "*.*" {
		return "*"
	}
	if strings.HasPrefix(s, ".") && !strings.Contains(s, "/") {
		return "*" + s
	}
	if strings.Contains(s, "{") && strings.Contains(s, "}") {
		s = braceList.ReplaceAllStringFunc(s, func(m string) string {
			inner := m[1 : len(m)-1]
			var alts []string
			for _, alt := range strings.Split(inner, ",") {
				if alt != "" {
					alts = append(alts, alt)
				}
			}
			return "{" + strings.Join(alts, ",") + "}"
		})
	}
	return s
}
