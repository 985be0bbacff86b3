package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/harrison/dirc/internal/compiler"
	"github.com/harrison/dirc/internal/config"
	"github.com/spf13/cobra"
)

// defaultSpecCandidates are tried in order inside the root when --spec is
// not given.
var defaultSpecCandidates = []string{".dirc", "dirc.dirc", "dirc.spec"}

// commonFlags is the flag surface shared by check and compile.
type commonFlags struct {
	spec       string
	root       string
	ignore     []string
	allowExtra bool
	strictRoot bool
	logLevel   string
}

// addCommonFlags registers the shared flags on a subcommand.
func addCommonFlags(cmd *cobra.Command, flags *commonFlags) {
	cmd.Flags().StringVar(&flags.spec, "spec", "",
		"Path to spec file (default: .dirc/dirc.dirc/dirc.spec in the root)")
	cmd.Flags().StringVar(&flags.root, "root", ".",
		"Project root to validate")
	cmd.Flags().StringArrayVar(&flags.ignore, "ignore", nil,
		"Basename glob to ignore (repeatable). Always ignores .git and the spec file itself")
	cmd.Flags().BoolVar(&flags.allowExtra, "allow-extra", false,
		"Allow extra files/dirs everywhere (disables strictness)")
	cmd.Flags().BoolVar(&flags.strictRoot, "strict-root", false,
		"Make the project root strict as well (by default only listed dirs are linted)")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "",
		"Log verbosity: trace, debug, info, warn, error")
}

// runContext is the fully resolved input for check and compile: the spec
// to parse, the root to validate, and the compile options after merging
// the project config file with command-line flags.
type runContext struct {
	specPath string
	root     string
	logLevel string
	opts     compiler.Options
}

// resolveCommon merges the project config file with flags (flags win when
// set), discovers the spec file, and validates user ignore globs.
func resolveCommon(cmd *cobra.Command, flags *commonFlags) (*runContext, error) {
	root, err := filepath.Abs(flags.root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", flags.root, err)
	}

	cfg, err := config.LoadConfig(filepath.Join(root, config.Filename))
	if err != nil {
		return nil, err
	}

	allowExtra := cfg.AllowExtra
	if cmd.Flags().Changed("allow-extra") {
		allowExtra = flags.allowExtra
	}
	strictRoot := cfg.StrictRoot
	if cmd.Flags().Changed("strict-root") {
		strictRoot = flags.strictRoot
	}
	logLevel := cfg.LogLevel
	if cmd.Flags().Changed("log-level") {
		logLevel = flags.logLevel
	}

	specPath, err := resolveSpecPath(flags.spec, root)
	if err != nil {
		return nil, err
	}

	ignore := append(append([]string{}, cfg.Ignore...), flags.ignore...)
	for _, pattern := range ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern: %s", pattern)
		}
	}
	// The config file lives inside the validated root, so it gets the same
	// self-exemption as the spec file.
	ignore = append(ignore, config.Filename)

	return &runContext{
		specPath: specPath,
		root:     root,
		logLevel: logLevel,
		opts: compiler.Options{
			Ignore:       ignore,
			AllowExtra:   allowExtra,
			StrictRoot:   strictRoot,
			SpecBasename: filepath.Base(specPath),
		},
	}, nil
}

// resolveSpecPath returns the explicit spec path or discovers one of the
// default candidates inside the root.
func resolveSpecPath(explicit, root string) (string, error) {
	if explicit != "" {
		path, err := filepath.Abs(explicit)
		if err != nil {
			return "", fmt.Errorf("failed to resolve spec path %s: %w", explicit, err)
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("spec file not found: %s", path)
		}
		return path, nil
	}

	for _, name := range defaultSpecCandidates {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no spec file found (looked for: %s); pass --spec",
		strings.Join(defaultSpecCandidates, ", "))
}
