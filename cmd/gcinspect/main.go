// Command gcinspect is a developer diagnostic for ephemeralgc: it
// seeds a small demo runtime and lets you browse its heaps, roots and
// segments, either as one-shot subcommands or an interactive shell.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gcinspect",
		Short: "Inspect a demo ephemeralgc runtime's heaps, roots, and segments",
	}
	root.AddCommand(newReportCmd())
	root.AddCommand(newRootsCmd())
	root.AddCommand(newSegmentsCmd())
	root.AddCommand(newGCCmd())
	root.AddCommand(newShellCmd())
	return root
}
