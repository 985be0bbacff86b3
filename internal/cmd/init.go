package cmd

import (
	"fmt"
	"os"

	"github.com/harrison/dirc/internal/filelock"
	"github.com/spf13/cobra"
)

// starterSpec is the example specification written by init.
const starterSpec = `folder1
    pngs
        .png
    photos
        *.{svg, jpg, png}
folder2
    folder2-*.*
`

// NewInitCommand creates and returns the init subcommand
func NewInitCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter .dirc spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, path)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&path, "path", ".dirc", "Output path for the starter spec")
	return cmd
}

func runInit(cmd *cobra.Command, path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing file: %s", path)
	}

	if err := filelock.AtomicWrite(path, []byte(starterSpec), 0644); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote starter spec: %s\n", path)
	return nil
}
