package cmd

import (
	"fmt"
	"io"

	"labscrub/internal/pass"

	"github.com/spf13/cobra"
)

var (
	overridesFile string
	summaryFile   string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify courses and write the cleanup worklist",
	Long: `Scan the course registry for the portal flag, find the courses that have lab
instructions and write the report consumed by the cleanup passes.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&overridesFile, "overrides", "", "CSV with 'course id,requires portal' rows that force a classification")
	analyzeCmd.Flags().StringVar(&summaryFile, "csv", "", "Also write a per-course summary CSV")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	res, err := pass.Analyze(pass.AnalyzeOptions{
		RegistryPath:     cfg.RegistryPath,
		InstructionsPath: cfg.InstructionsPath,
		ReportPath:       cfg.ReportPath,
		OverridesPath:    overridesFile,
		SummaryPath:      summaryFile,
		FlagField:        cfg.FlagField,
		Window:           cfg.Window,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printAnalysis(cmd.OutOrStdout(), res)
	return nil
}

func printAnalysis(w io.Writer, res *pass.AnalyzeResult) {
	r := res.Report
	if len(r.UnflaggedWithInstructions) > 0 {
		fmt.Fprintf(w, "Courses needing cleanup: %v\n", r.UnflaggedWithInstructions)
	} else {
		fmt.Fprintln(w, "No courses without portal access have lab instructions.")
	}

	if len(res.Keywords) > 0 {
		fmt.Fprintln(w, "\nPortal references in lab instructions:")
		for _, k := range res.Keywords {
			fmt.Fprintf(w, "  %q: %d occurrences\n", k.Keyword, k.Count)
		}
	}

	fmt.Fprintln(w, "\nSUMMARY")
	fmt.Fprintf(w, "  Portal courses:              %d\n", len(r.Flagged))
	fmt.Fprintf(w, "  Courses without portal:      %d\n", len(r.Unflagged))
	fmt.Fprintf(w, "  Courses with instructions:   %d\n", len(r.WithInstructions))
	fmt.Fprintf(w, "  Courses needing cleanup:     %d\n", len(r.UnflaggedWithInstructions))
	fmt.Fprintf(w, "  Report: %s\n", cfg.ReportPath)
	if res.SummaryWritten {
		fmt.Fprintf(w, "  Summary CSV: %s\n", summaryFile)
	}
}
