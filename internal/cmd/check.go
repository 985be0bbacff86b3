package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/harrison/dirc/internal/checker"
	"github.com/harrison/dirc/internal/compiler"
	"github.com/harrison/dirc/internal/display"
	"github.com/harrison/dirc/internal/logger"
	"github.com/harrison/dirc/internal/spec"
	"github.com/spf13/cobra"
)

// NewCheckCommand creates and returns the check subcommand
func NewCheckCommand() *cobra.Command {
	flags := &commonFlags{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a directory tree against its spec",
		Long: `Parse the spec, compile it, and walk the root directory in-process.

The walk is fail-fast: the first violation is reported and the command
exits non-zero. Violations are one of: missing directory, missing
required directory, missing required file, unexpected directory,
unexpected file, ambiguous directory rule.

Exit code: 0 if the tree conforms, 1 otherwise`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage: true,
	}
	addCommonFlags(cmd, flags)
	return cmd
}

// runCheck resolves options, parses, compiles, and walks the tree,
// writing the verdict to output and diagnostics to errOutput.
func runCheck(cmd *cobra.Command, flags *commonFlags, output, errOutput io.Writer) error {
	rc, err := resolveCommon(cmd, flags)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(errOutput, rc.logLevel)

	parsed, err := spec.ParseFile(rc.specPath)
	if err != nil {
		return err
	}
	log.LogDebug(fmt.Sprintf("parsed spec %s", rc.specPath))

	if duplicates := duplicateRuleNames(parsed.Root); len(duplicates) > 0 {
		display.WarnDuplicateRules(rc.specPath, duplicates).Display(errOutput)
	}

	prog := compiler.Compile(parsed, rc.opts)
	log.LogDebug(fmt.Sprintf("compiled %d rules", len(prog.Rules)))

	chk := checker.New(prog, rc.root)
	chk.SetLogger(log)

	if err := chk.Run(); err != nil {
		var violation *checker.Violation
		if errors.As(err, &violation) {
			display.Fail(errOutput, violation.Error())
			return fmt.Errorf("validation failed: %s", violation.Error())
		}
		return err
	}

	display.Pass(output, rc.root)
	return nil
}

// duplicateRuleNames walks the tree and collects sibling rule names and
// patterns that appear more than once, in first-occurrence order.
func duplicateRuleNames(rule *spec.DirectoryRule) []string {
	var duplicates []string
	seen := make(map[string]int)

	var names []string
	for _, child := range rule.Subdirs {
		names = append(names, child.Name)
	}
	names = append(names, rule.FilePatterns...)
	names = append(names, rule.RequiredFiles...)

	for _, name := range names {
		seen[name]++
		if seen[name] == 2 {
			duplicates = append(duplicates, name)
		}
	}

	for _, child := range rule.Subdirs {
		duplicates = append(duplicates, duplicateRuleNames(child)...)
	}
	return duplicates
}
