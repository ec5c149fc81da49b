package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGCCmd() *cobra.Command {
	var parallel, markOnly, markAllOldCards bool
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Run a minor GC (or a mark-only pass) on the demo runtime and print the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildDemoRuntime()
			if err != nil {
				return err
			}
			defer rt.Destroy()

			out := cmd.OutOrStdout()
			switch {
			case markOnly:
				n, err := rt.MarkEphemeralAll(markAllOldCards)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "mark-only: %d ephemeral objects reachable\n", n)
			case parallel:
				if err := rt.CollectEphemeralAllParallel(); err != nil {
					return err
				}
				fmt.Fprintln(out, "parallel minor GC complete")
			default:
				if err := rt.CollectEphemeralAll(); err != nil {
					return err
				}
				fmt.Fprintln(out, "sequential minor GC complete")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&parallel, "parallel", false, "use the cross-heap parallel minor GC")
	cmd.Flags().BoolVar(&markOnly, "mark-only", false, "report reachability without collecting")
	cmd.Flags().BoolVar(&markAllOldCards, "mark-all-old-cards", false, "with --mark-only, scan every old segment in full instead of trusting dirty cards")
	return cmd
}
