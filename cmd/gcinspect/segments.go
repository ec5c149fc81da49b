package main

import (
	"fmt"

	"github.com/haldane-systems/ephemeralgc/diag"
	"github.com/spf13/cobra"
)

func newSegmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List every heap's segments with occupancy and dirty-card counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildDemoRuntime()
			if err != nil {
				return err
			}
			defer rt.Destroy()

			report, err := diag.Build(rt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, h := range report.Heaps {
				for _, seg := range h.Segments {
					fmt.Fprintf(out, "heap %d  %-6s  base=%-12s size=%-8d allocated=%-8d dirtyCards=%d objects=%d\n",
						h.Index, seg.Generation, seg.Base, seg.Size, seg.AllocatedBytes, seg.DirtyCardCount, len(seg.Objects))
				}
			}
			return nil
		},
	}
}
