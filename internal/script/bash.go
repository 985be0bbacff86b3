// Package script renders a compiled Program as a standalone bash verifier.
//
// The emitted script has no dependencies beyond bash itself, takes the
// root to validate as its only argument, exits 0 on success and 1 on the
// first violation, and prints the same "<cause>: <relative-path>"
// diagnostics as the native checker, prefixed "dirc:" on stderr.
package script

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/harrison/dirc/internal/compiler"
)

var braceList = regexp.MustCompile(`\{([^}]*)\}`)

// Emit renders the program as an executable bash script.
func Emit(prog *compiler.Program) string {
	var b strings.Builder
	emitHeader(&b, prog)
	emitHelpers(&b)
	for i := range prog.Rules {
		emitRule(&b, prog, &prog.Rules[i])
	}
	fmt.Fprintf(&b, "%s \".\"\n\n", funcName(prog.Root().ID))
	b.WriteString("echo \"dirc: ok\"\n")
	return b.String()
}

func emitHeader(b *strings.Builder, prog *compiler.Program) {
	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("# Generated by dirc compile. Edit the spec, not this file.\n")
	b.WriteString("set -euo pipefail\n")
	b.WriteString("shopt -s extglob\n\n")
	b.WriteString("ROOT=\"${1:-.}\"\n")
	fmt.Fprintf(b, "ALLOW_EXTRA_EVERYWHERE=%s\n", boolFlag(prog.AllowExtra))
	fmt.Fprintf(b, "STRICT_ROOT=%s\n", boolFlag(prog.StrictRoot))
	fmt.Fprintf(b, "SPEC_BASENAME=%s\n\n", quote(prog.SpecBasename))
	fmt.Fprintf(b, "%s\n\n", array("IGNORE_BASENAMES", patterns(prog.Ignore)))
	b.WriteString("if [[ \"${1:-}\" != \"\" ]] && [[ ! -d \"$ROOT\" ]]; then\n")
	b.WriteString("  ROOT=\".\"\nfi\n\n")
}

func emitHelpers(b *strings.Builder) {
	b.WriteString(`fail() {
  echo "dirc: $*" >&2
  exit 1
}

basename_safe() {
  local p="$1"
  echo "${p##*/}"
}

join_rel() {
  if [[ "$1" == "." ]]; then
    echo "$2"
  else
    echo "$1/$2"
  fi
}

matches_any() {
  local name="$1"; shift
  local pat
  for pat in "$@"; do
    [[ "$name" == $pat ]] && return 0
  done
  return 1
}

is_ignored() {
  local base="$1"
  matches_any "$base" "${IGNORE_BASENAMES[@]}"
}

check_dir() {
  local rel="$1"
  local allowed_dirs_var="$2"
  local allowed_files_var="$3"
  local required_dirs_var="$4"
  local required_files_var="$5"
  local allow_extra="$6"

  local path="$ROOT/$rel"
  [[ -d "$path" ]] || fail "missing directory: $rel"

  local allowed_dirs allowed_files required_dirs required_files
  eval "allowed_dirs=(\"\${${allowed_dirs_var}[@]}\")"
  eval "allowed_files=(\"\${${allowed_files_var}[@]}\")"
  eval "required_dirs=(\"\${${required_dirs_var}[@]}\")"
  eval "required_files=(\"\${${required_files_var}[@]}\")"

  local req
  for req in "${required_dirs[@]}"; do
    [[ -d "$path/$req" ]] || fail "missing required directory: $(join_rel "$rel" "$req")"
  done

  for req in "${required_files[@]}"; do
    [[ -f "$path/$req" ]] || fail "missing required file: $(join_rel "$rel" "$req")"
  done

  shopt -s nullglob dotglob
  local entries=("$path"/*)
  shopt -u dotglob

  local entry base
  for entry in "${entries[@]}"; do
    base="$(basename_safe "$entry")"
    is_ignored "$base" && continue

    if [[ -d "$entry" ]]; then
      if matches_any "$base" "${allowed_dirs[@]}"; then
        :
      elif [[ "$allow_extra" == "1" ]]; then
        :
      else
        fail "unexpected directory: $(join_rel "$rel" "$base")"
      fi
    else
      if matches_any "$base" "${allowed_files[@]}"; then
        :
      elif [[ "$allow_extra" == "1" ]]; then
        :
      else
        fail "unexpected file: $(join_rel "$rel" "$base")"
      fi
    fi
  done
}

`)
}

// emitRule writes one rule's name tables followed by its check routine.
func emitRule(b *strings.Builder, prog *compiler.Program, rule *compiler.Rule) {
	id := rule.ID
	fmt.Fprintf(b, "%s\n", array(fmt.Sprintf("ALLOWED_DIRS_%d", id), patterns(rule.AllowedDirs)))
	fmt.Fprintf(b, "%s\n", array(fmt.Sprintf("ALLOWED_FILES_%d", id), patterns(rule.AllowedFiles)))
	fmt.Fprintf(b, "%s\n", array(fmt.Sprintf("REQUIRED_DIRS_%d", id), rule.RequiredDirs))
	fmt.Fprintf(b, "%s\n\n", array(fmt.Sprintf("REQUIRED_FILES_%d", id), rule.RequiredFiles))

	fmt.Fprintf(b, "%s() {\n", funcName(id))
	b.WriteString("  local rel=\"$1\"\n")
	b.WriteString("  local allow_extra=0\n")
	b.WriteString("  if [[ \"$ALLOW_EXTRA_EVERYWHERE\" == \"1\" ]] || { [[ \"$rel\" == \".\" ]] && [[ \"$STRICT_ROOT\" != \"1\" ]]; }; then allow_extra=1; fi\n")
	fmt.Fprintf(b, "  check_dir \"$rel\" ALLOWED_DIRS_%d ALLOWED_FILES_%d REQUIRED_DIRS_%d REQUIRED_FILES_%d \"$allow_extra\"\n",
		id, id, id, id)

	for _, childIdx := range rule.LiteralChildren {
		child := &prog.Rules[childIdx]
		fmt.Fprintf(b, "  %s \"$(join_rel \"$rel\" %s)\"\n", funcName(child.ID), quote(child.Name))
	}

	if len(rule.WildcardChildren) > 0 {
		emitWildcardDispatch(b, prog, rule)
	}

	b.WriteString("}\n\n")
}

// emitWildcardDispatch re-scans the directory's actual subdirectories and
// routes each one to the single wildcard rule that matches it. Matching
// two patterns fails immediately; first-match-wins is deliberately not
// implemented.
func emitWildcardDispatch(b *strings.Builder, prog *compiler.Program, rule *compiler.Rule) {
	b.WriteString("  local path=\"$ROOT/$rel\"\n")
	b.WriteString("  shopt -s nullglob dotglob\n")
	b.WriteString("  local dirs=(\"$path\"/*)\n")
	b.WriteString("  shopt -u dotglob\n")
	b.WriteString("  local entry base\n")
	b.WriteString("  for entry in \"${dirs[@]}\"; do\n")
	b.WriteString("    [[ -d \"$entry\" ]] || continue\n")
	b.WriteString("    base=\"$(basename_safe \"$entry\")\"\n")
	b.WriteString("    is_ignored \"$base\" && continue\n")

	if len(rule.RequiredDirs) > 0 {
		b.WriteString("    case \"$base\" in\n")
		for _, name := range rule.RequiredDirs {
			fmt.Fprintf(b, "      %s) continue ;;\n", quote(name))
		}
		b.WriteString("    esac\n")
	}

	b.WriteString("    local matched=0\n")
	for _, childIdx := range rule.WildcardChildren {
		child := &prog.Rules[childIdx]
		fmt.Fprintf(b, "    if [[ \"$base\" == %s ]]; then\n", toExtGlob(child.Name))
		b.WriteString("      if [[ \"$matched\" == \"1\" ]]; then\n")
		b.WriteString("        fail \"ambiguous directory rule: $(join_rel \"$rel\" \"$base\")\"\n")
		b.WriteString("      fi\n")
		b.WriteString("      matched=1\n")
		fmt.Fprintf(b, "      %s \"$(join_rel \"$rel\" \"$base\")\"\n", funcName(child.ID))
		b.WriteString("    fi\n")
	}
	b.WriteString("  done\n")
}

func funcName(id int) string {
	return fmt.Sprintf("rule_%d", id)
}

func boolFlag(v bool) string {
	if v {
		return "1"
	}
	return "0"
}

// quote single-quotes s for bash, escaping embedded single quotes.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// array renders a bash array assignment. Items are quoted so the shell
// does not expand them at assignment time; matching happens later via
// unquoted expansion on the right side of [[ == ]].
func array(name string, items []string) string {
	if len(items) == 0 {
		return name + "=()"
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = quote(item)
	}
	return name + "=(" + strings.Join(quoted, " ") + ")"
}

// patterns converts stored patterns to their bash extglob form.
func patterns(items []string) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = toExtGlob(item)
	}
	return out
}

// toExtGlob rewrites brace alternation to extglob, "{a,b}" -> "@(a|b)",
// which bash matches under shopt extglob. Other pattern syntax passes
// through unchanged.
func toExtGlob(pattern string) string {
	if !strings.Contains(pattern, "{") {
		return pattern
	}
	return braceList.ReplaceAllStringFunc(pattern, func(m string) string {
		return "@(" + strings.ReplaceAll(m[1:len(m)-1], ",", "|") + ")"
	})
}
