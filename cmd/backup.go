package cmd

import (
	"fmt"

	"labscrub/internal/backup"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	outputDir       string
	timestamped     bool
	backupOverwrite bool
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Back up the lab instruction file",
	Long: `Copy the lab instruction file to its backup next to it, the file the
backup-sourced cleanup passes start from. With --timestamp a dated copy is
written to --output instead and the regular backup is left alone.`,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&outputDir, "output", "o", "./backups", "Output directory for timestamped backups")
	backupCmd.Flags().BoolVarP(&timestamped, "timestamp", "t", false, "Write a timestamped copy to the output directory")
	backupCmd.Flags().BoolVar(&backupOverwrite, "overwrite", false, "Replace an existing backup")
}

func runBackup(cmd *cobra.Command, args []string) error {
	backupService := backup.NewService(cfg.BackupSuffix)

	if timestamped {
		file, err := backupService.Snapshot(cfg.InstructionsPath, outputDir)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		log.Infof("Backup completed successfully: %s", file)
		return nil
	}

	path, created, err := backupService.Create(cfg.InstructionsPath, backupOverwrite)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	if !created {
		log.Warnf("Backup %s already exists, use --overwrite to replace it", path)
		return nil
	}
	log.Infof("Backup completed successfully: %s", path)
	return nil
}
