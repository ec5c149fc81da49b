package main

import (
	"fmt"

	"github.com/haldane-systems/ephemeralgc/diag"
	"github.com/spf13/cobra"
)

func newRootsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "List every heap's named roots",
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
				for name, addr := range h.Roots {
					fmt.Fprintf(out, "heap %d: %s = %s\n", h.Index, name, addr)
				}
			}
			return nil
		},
	}
}
