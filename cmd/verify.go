package cmd

import (
	"fmt"
	"io"

	"labscrub/internal/catalog"
	"labscrub/internal/pass"
	"labscrub/internal/sanitizer"

	"github.com/spf13/cobra"
)

var verifyProfile string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Count remaining portal references without changing anything",
	Long: `Count the probes of a profile over the instruction file, and the remaining
"Azure Portal" mentions per course. Exits with an error when a course without
portal access still mentions the portal.`,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyProfile, "profile", "p", "final", "Profile whose probes are counted")
}

func runVerify(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	profile, err := profiles.Get(verifyProfile)
	if err != nil {
		return err
	}
	report, err := catalog.LoadReport(cfg.ReportPath)
	if err != nil {
		return fmt.Errorf("%w (run \"labscrub analyze\" first)", err)
	}

	res, err := pass.Verify(cfg.InstructionsPath, report, profile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printProbes(out, res.Probes)
	printCounts(out, "Courses without portal access", res.Exempt)
	printCounts(out, "Portal courses (kept)", res.Flagged)

	if len(res.Dirty) > 0 {
		return fmt.Errorf("%d courses without portal access still mention the portal: %v", len(res.Dirty), res.Dirty)
	}
	fmt.Fprintln(out, "\nAll courses without portal access are clean")
	return nil
}

func printProbes(w io.Writer, probes []sanitizer.ProbeCount) {
	if len(probes) == 0 {
		return
	}
	fmt.Fprintln(w, "\nVerification:")
	for _, p := range probes {
		fmt.Fprintf(w, "  %q: %d\n", p.Name, p.Count)
	}
}

func printCounts(w io.Writer, title string, counts []pass.CourseCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, c := range counts {
		fmt.Fprintf(w, "  %s: %d\n", c.CourseID, c.Count)
	}
}
