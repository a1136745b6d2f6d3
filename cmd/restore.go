package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"labscrub/internal/backup"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var skipConfirmation bool

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the lab instruction file from its backup",
	Long:  "Overwrite the lab instruction file with the backup taken by the mark pass or the backup command",
	RunE:  runRestore,
}

func init() {
	restoreCmd.Flags().BoolVar(&skipConfirmation, "yes", false, "Skip confirmation prompts")
}

func runRestore(cmd *cobra.Command, args []string) error {
	backupService := backup.NewService(cfg.BackupSuffix)
	source := backupService.Path(cfg.InstructionsPath)

	if err := backupService.ValidateBackupFile(source); err != nil {
		return fmt.Errorf("backup file validation failed: %w", err)
	}

	if !skipConfirmation {
		log.Infof("About to restore:")
		log.Infof("  Source file: %s", source)
		log.Infof("  Target file: %s", cfg.InstructionsPath)
		log.Warn("  All cleanup passes applied since the backup will be lost!")

		if !confirmAction("Do you want to continue?") {
			log.Info("Restore cancelled")
			return nil
		}
	}

	if err := backupService.Restore(cfg.InstructionsPath); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	log.Info("Restore completed successfully!")
	return nil
}

func confirmAction(message string) bool {
	fmt.Printf("%s (y/N): ", message)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
