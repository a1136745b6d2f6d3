package cmd

import (
	"os"

	"labscrub/internal/backup"
	"labscrub/internal/config"
	"labscrub/internal/pass"
	"labscrub/internal/sanitizer"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "labscrub",
	Short: "Remove cloud portal tasks from labs that run on a VM only",
	Long: `labscrub maintains the generated content of the course catalog.

It classifies courses by their requiresAzurePortal flag, then rewrites the lab
instruction registry so that courses without portal access only contain steps
that can be done on the lab VM. Each pass is a separate subcommand; run
"labscrub analyze" first to produce the worklist the cleanup passes consume.`,
	SilenceUsage: true,
	RunE:         runTUI,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.RegistryPath, "registry", cfg.RegistryPath, "Course registry file")
	flags.StringVar(&cfg.InstructionsPath, "instructions", cfg.InstructionsPath, "Lab instruction registry file")
	flags.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Analysis report (JSON)")
	flags.StringVar(&cfg.BackupSuffix, "backup-suffix", cfg.BackupSuffix, "Suffix of the lab instruction backup file")
	flags.StringVar(&cfg.RulesPath, "rules", cfg.RulesPath, "YAML file with extra or replacement cleanup profiles")
	flags.StringVar(&cfg.FlagField, "flag-field", cfg.FlagField, "Registry field marking courses that need the portal")
	flags.IntVar(&cfg.Window, "window", cfg.Window, "Bytes after a course id searched for the portal flag")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(flagCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(profilesCmd)
}

func initConfig() {
	config.LoadEnvFiles()
	config.ApplyEnv(&cfg, func(name string) bool {
		f := rootCmd.PersistentFlags().Lookup(name)
		if f == nil {
			// command-local flags such as --db-uri
			for _, c := range rootCmd.Commands() {
				if lf := c.Flags().Lookup(name); lf != nil && lf.Changed {
					return true
				}
			}
			return false
		}
		return f.Changed
	})

	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

func newPassService() *pass.Service {
	return pass.NewService(backup.NewService(cfg.BackupSuffix))
}

func loadProfiles() (sanitizer.Profiles, error) {
	return sanitizer.LoadProfiles(cfg.RulesPath)
}
