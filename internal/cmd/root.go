package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for dirc
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dirc",
		Short: "Directory structure linter",
		Long: `Dirc validates that a directory tree conforms to a declarative
structural specification: an indentation-based DSL describing expected
subdirectories, required files, and allowed file-name patterns.

It can check a root directly, or compile the spec into a standalone,
dependency-free bash verifier that reproduces the same check.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewCheckCommand())
	cmd.AddCommand(NewCompileCommand())
	cmd.AddCommand(NewInitCommand())

	return cmd
}
