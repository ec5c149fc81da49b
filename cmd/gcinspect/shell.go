package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/haldane-systems/ephemeralgc/diag"
	"github.com/haldane-systems/ephemeralgc/gcruntime"
	"github.com/spf13/cobra"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Open an interactive shell over the demo runtime",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := buildDemoRuntime()
			if err != nil {
				return err
			}
			defer rt.Destroy()
			return runShell(cmd.OutOrStdout(), rt)
		},
	}
}

func runShell(out io.Writer, rt *gcruntime.Runtime) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "gcinspect> ",
		HistoryLimit:    500,
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("starting shell: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(out, "ephemeralgc interactive inspector. Commands: report, roots, segments, gc [--parallel|--mark-only [--mark-all-old-cards]], quit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil
		case "report":
			report, err := diag.Build(rt)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			printReport(out, report, false)
		case "roots":
			report, err := diag.Build(rt)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			for _, h := range report.Heaps {
				for name, addr := range h.Roots {
					fmt.Fprintf(out, "heap %d: %s = %s\n", h.Index, name, addr)
				}
			}
		case "segments":
			report, err := diag.Build(rt)
			if err != nil {
				fmt.Fprintln(out, "error:", err)
				continue
			}
			for _, h := range report.Heaps {
				for _, seg := range h.Segments {
					fmt.Fprintf(out, "heap %d  %-6s  allocated=%d dirtyCards=%d objects=%d\n",
						h.Index, seg.Generation, seg.AllocatedBytes, seg.DirtyCardCount, len(seg.Objects))
				}
			}
		case "gc":
			if err := runShellGC(out, rt, fields[1:]); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		default:
			fmt.Fprintf(out, "unknown command %q\n", fields[0])
		}
	}
}

func runShellGC(out io.Writer, rt *gcruntime.Runtime, opts []string) error {
	markOnly := false
	markAllOldCards := false
	parallel := false
	for _, opt := range opts {
		switch opt {
		case "--mark-only":
			markOnly = true
		case "--mark-all-old-cards":
			markAllOldCards = true
		case "--parallel":
			parallel = true
		}
	}
	switch {
	case markOnly:
		n, err := rt.MarkEphemeralAll(markAllOldCards)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "mark-only: %d ephemeral objects reachable\n", n)
		return nil
	case parallel:
		if err := rt.CollectEphemeralAllParallel(); err != nil {
			return err
		}
		fmt.Fprintln(out, "parallel minor GC complete")
		return nil
	}
	if err := rt.CollectEphemeralAll(); err != nil {
		return err
	}
	fmt.Fprintln(out, "sequential minor GC complete")
	return nil
}
