package cmd

import (
	"fmt"
	"io"
	"strings"

	"labscrub/internal/catalog"
	"labscrub/internal/pass"

	"github.com/spf13/cobra"
)

var (
	cleanDryRun     bool
	overwriteBackup bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <profile>",
	Short: "Run a cleanup profile over the courses without portal access",
	Long: `Rewrite the lab instruction blocks of every course in the report's worklist
with the named profile. Built-in profiles:

  mark        back up the instructions, add a VM-only marker, rewrite portal actions
  safe        rebuild from the backup with conservative phrase rewrites
  aggressive  remove portal steps and knowledge blocks, starting from the backup if present
  final       rebuild from the backup and remove every remaining portal reference

Portal courses are never modified. Use "labscrub profiles" to list profiles
loaded from --rules.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Print the diff instead of writing the instruction file")
	cleanCmd.Flags().BoolVar(&overwriteBackup, "overwrite-backup", false, "Replace an existing backup when the profile creates one")
}

func runClean(cmd *cobra.Command, args []string) error {
	profiles, err := loadProfiles()
	if err != nil {
		return err
	}
	profile, err := profiles.Get(args[0])
	if err != nil {
		return err
	}

	report, err := catalog.LoadReport(cfg.ReportPath)
	if err != nil {
		return fmt.Errorf("%w (run \"labscrub analyze\" first)", err)
	}

	res, err := newPassService().Clean(pass.CleanOptions{
		InstructionsPath: cfg.InstructionsPath,
		Profile:          profile,
		Report:           report,
		DryRun:           cleanDryRun,
		OverwriteBackup:  overwriteBackup,
	})
	if err != nil {
		return fmt.Errorf("%s pass failed: %w", profile.Name, err)
	}

	out := cmd.OutOrStdout()
	if cleanDryRun {
		fmt.Fprint(out, res.Diff)
	}
	printClean(out, res)
	if len(res.FlaggedTouched) > 0 {
		return fmt.Errorf("portal courses changed: %s", strings.Join(res.FlaggedTouched, ", "))
	}
	return nil
}

func printClean(w io.Writer, res *pass.CleanResult) {
	fmt.Fprintf(w, "\n%s PASS\n", strings.ToUpper(res.Profile))
	fmt.Fprintf(w, "  Source: %s\n", res.SourcePath)
	if res.BackupCreated {
		fmt.Fprintf(w, "  Backup: %s\n", res.BackupPath)
	}
	fmt.Fprintf(w, "  Courses cleaned: %d\n", len(res.Sanitize.Updated))
	if len(res.Sanitize.Missing) > 0 {
		fmt.Fprintf(w, "  Courses without instructions: %d\n", len(res.Sanitize.Missing))
	}
	if res.Written {
		fmt.Fprintln(w, "  Instructions written")
	}
	printProbes(w, res.Probes)
	printCounts(w, "Remaining portal references", res.Remaining)
}
