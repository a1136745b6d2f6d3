package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config carries the paths and connection settings shared by every command.
type Config struct {
	RegistryPath     string
	InstructionsPath string
	ReportPath       string
	BackupSuffix     string
	RulesPath        string
	FlagField        string
	Window           int
	LogLevel         string

	DBURI      string
	DBName     string
	Collection string
}

// Default returns the layout of the catalog repository the passes run in.
func Default() Config {
	return Config{
		RegistryPath:     "src/lib/mock-data.ts",
		InstructionsPath: "src/data/lab-instructions.ts",
		ReportPath:       "lab-instructions-analysis.json",
		BackupSuffix:     ".backup",
		FlagField:        "requiresAzurePortal",
		Window:           4000,
		LogLevel:         "info",
		DBURI:            "mongodb://localhost:27017",
		DBName:           "hexalabs",
		Collection:       "labs",
	}
}

// envBindings maps environment variables onto the config field a flag of the
// same meaning would set. The flag name is used to skip explicitly set flags.
var envBindings = []struct {
	env  string
	flag string
	set  func(c *Config, v string)
}{
	{"LABSCRUB_REGISTRY", "registry", func(c *Config, v string) { c.RegistryPath = v }},
	{"LABSCRUB_INSTRUCTIONS", "instructions", func(c *Config, v string) { c.InstructionsPath = v }},
	{"LABSCRUB_REPORT", "report", func(c *Config, v string) { c.ReportPath = v }},
	{"LABSCRUB_BACKUP_SUFFIX", "backup-suffix", func(c *Config, v string) { c.BackupSuffix = v }},
	{"LABSCRUB_RULES", "rules", func(c *Config, v string) { c.RulesPath = v }},
	{"LABSCRUB_FLAG_FIELD", "flag-field", func(c *Config, v string) { c.FlagField = v }},
	{"LABSCRUB_WINDOW", "window", func(c *Config, v string) {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Warnf("Ignoring LABSCRUB_WINDOW=%q: not a positive integer", v)
			return
		}
		c.Window = n
	}},
	{"LABSCRUB_LOG_LEVEL", "log-level", func(c *Config, v string) { c.LogLevel = v }},
	{"DB_URI", "db-uri", func(c *Config, v string) { c.DBURI = v }},
	{"DB_NAME", "database", func(c *Config, v string) { c.DBName = v }},
	{"DB_COLLECTION", "collection", func(c *Config, v string) { c.Collection = v }},
}

// LoadEnvFiles reads .env style files into the process environment. A missing
// file is not an error.
func LoadEnvFiles(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		log.Debugf("No .env file found or error loading it: %v", err)
	}
}

// ApplyEnv overrides c from the environment. changed reports whether the
// flag bound to a field was set on the command line; such fields keep the
// flag value.
func ApplyEnv(c *Config, changed func(flag string) bool) {
	for _, b := range envBindings {
		v := os.Getenv(b.env)
		if v == "" {
			continue
		}
		if changed != nil && changed(b.flag) {
			continue
		}
		b.set(c, v)
	}
}
