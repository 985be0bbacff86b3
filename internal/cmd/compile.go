package cmd

import (
	"fmt"
	"os"

	"github.com/harrison/dirc/internal/compiler"
	"github.com/harrison/dirc/internal/filelock"
	"github.com/harrison/dirc/internal/script"
	"github.com/harrison/dirc/internal/spec"
	"github.com/spf13/cobra"
)

// NewCompileCommand creates and returns the compile subcommand
func NewCompileCommand() *cobra.Command {
	flags := &commonFlags{}
	var outPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the spec to a standalone bash verifier",
		Long: `Compile the spec into a self-contained bash script that performs the
identical check against a root path argument, with no dependency on dirc.

The script exits 0 on success and 1 on the first violation, printing the
same "<cause>: <relative-path>" diagnostic to stderr.

Without --out the script is written to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, flags, outPath, force)
		},
		SilenceUsage: true,
	}
	addCommonFlags(cmd, flags)
	cmd.Flags().StringVar(&outPath, "out", "",
		"Write the script to this path (chmod +x). Default: stdout")
	cmd.Flags().BoolVar(&force, "force", false,
		"Overwrite an existing --out path")
	return cmd
}

func runCompile(cmd *cobra.Command, flags *commonFlags, outPath string, force bool) error {
	rc, err := resolveCommon(cmd, flags)
	if err != nil {
		return err
	}

	parsed, err := spec.ParseFile(rc.specPath)
	if err != nil {
		return err
	}

	prog := compiler.Compile(parsed, rc.opts)
	text := script.Emit(prog)

	if outPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}

	if _, err := os.Stat(outPath); err == nil && !force {
		return fmt.Errorf("refusing to overwrite existing file: %s (use --force)", outPath)
	}

	// Locked so concurrent invocations (parallel CI hooks) cannot clobber
	// each other's writes.
	if err := filelock.LockAndWrite(outPath, []byte(text), 0755); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote verifier script: %s\n", outPath)
	return nil
}
