package cmd

import (
	"fmt"

	"labscrub/internal/catalog"
	"labscrub/internal/pass"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	titleMarker string
	flagDryRun  bool
)

var flagCmd = &cobra.Command{
	Use:   "flag",
	Short: "Add the portal flag to cloud slice courses in the registry",
	Long: `Insert "requiresAzurePortal: true" into every registry course whose title
carries the cloud slice marker and that does not declare the flag yet.`,
	RunE: runFlag,
}

func init() {
	flagCmd.Flags().StringVar(&titleMarker, "title-marker", catalog.DefaultTitleMarker, "Title text identifying cloud slice courses")
	flagCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print the diff instead of writing the registry")
}

func runFlag(cmd *cobra.Command, args []string) error {
	res, err := pass.Flag(cfg.RegistryPath, titleMarker, cfg.FlagField, flagDryRun)
	if err != nil {
		return fmt.Errorf("flag pass failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagDryRun {
		fmt.Fprint(out, res.Diff)
	}
	if res.Written {
		log.Infof("Updated %s", cfg.RegistryPath)
	}
	fmt.Fprintf(out, "Flagged %d cloud slice courses (%d already flagged)\n", res.Flagged, res.Already)
	return nil
}
