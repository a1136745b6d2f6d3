package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"labscrub/internal/catalog"
	"labscrub/internal/database"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	syncBackupDir string
	syncDryRun    bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the portal classification to the labs collection in MongoDB",
	Long: `Set requiresAzurePortal on every lab document that has instructions,
using the classification of the last analysis. Documents are matched by their
id field and never created.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&cfg.DBURI, "db-uri", "u", cfg.DBURI, "MongoDB connection URI")
	syncCmd.Flags().StringVarP(&cfg.DBName, "database", "d", cfg.DBName, "Database name")
	syncCmd.Flags().StringVarP(&cfg.Collection, "collection", "c", cfg.Collection, "Collection name")
	syncCmd.Flags().StringVar(&syncBackupDir, "backup-dir", "", "Dump the collection as JSON lines to this directory before updating")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "List the updates without connecting to MongoDB")
}

func runSync(cmd *cobra.Command, args []string) error {
	report, err := catalog.LoadReport(cfg.ReportPath)
	if err != nil {
		return fmt.Errorf("%w (run \"labscrub analyze\" first)", err)
	}

	updates := database.PortalFlagUpdates(report)
	if syncDryRun {
		out := cmd.OutOrStdout()
		for _, u := range updates {
			fmt.Fprintf(out, "%s: requiresAzurePortal=%t\n", u.CourseID, u.RequiresPortal)
		}
		return nil
	}

	db, err := database.NewMongoDB(cfg.DBURI, cfg.DBName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer db.Close()

	if syncBackupDir != "" {
		if err := dumpCollection(db, syncBackupDir); err != nil {
			return err
		}
	}

	log.Infof("Updating %d labs in %s.%s...", len(updates), cfg.DBName, cfg.Collection)
	res, err := db.SyncPortalFlags(cfg.Collection, updates)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	for _, id := range res.Missing {
		log.Warnf("No lab document with id %s", id)
	}

	log.Infof("Sync completed: %d matched, %d modified, %d missing", res.Matched, res.Modified, len(res.Missing))
	return nil
}

func dumpCollection(db *database.MongoDB, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	name := fmt.Sprintf("backup_%s_%s.json", cfg.Collection, time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	count, err := db.BackupCollection(cfg.Collection, file)
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("collection backup failed: %w", err)
	}
	log.Infof("Backed up %d documents to %s", count, path)
	return nil
}
