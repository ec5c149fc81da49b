package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/haldane-systems/ephemeralgc/diag"
	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a full object report for the demo runtime",
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
			return printReport(cmd.OutOrStdout(), report, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON instead of text")
	return cmd
}

func printReport(w io.Writer, report *diag.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	for _, h := range report.Heaps {
		fmt.Fprintf(w, "heap %d\n", h.Index)
		for name, addr := range h.Roots {
			fmt.Fprintf(w, "  root %s = %s\n", name, addr)
		}
		for _, seg := range h.Segments {
			fmt.Fprintf(w, "  segment %s base=%s size=%d allocated=%d dirtyCards=%d\n",
				seg.Generation, seg.Base, seg.Size, seg.AllocatedBytes, seg.DirtyCardCount)
			for _, obj := range seg.Objects {
				fmt.Fprintf(w, "    [%d] %s @ %s (%d bytes)\n", obj.Index, obj.TypeName, obj.Address, obj.Size)
				printFields(w, obj.Fields, "      ")
			}
		}
	}
	for _, wmsg := range report.Warnings {
		fmt.Fprintf(w, "warning: %s\n", wmsg)
	}
	return nil
}

func printFields(w io.Writer, fields []diag.FieldValue, indent string) {
	for _, f := range fields {
		if len(f.Nested) > 0 {
			fmt.Fprintf(w, "%s%s (%s):\n", indent, f.Name, f.Kind)
			printFields(w, f.Nested, indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s (%s) = %s\n", indent, f.Name, f.Kind, f.Value)
	}
}
