package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("LABSCRUB_REPORT", "custom.json")
	t.Setenv("LABSCRUB_WINDOW", "250")
	t.Setenv("DB_NAME", "catalog")
	t.Setenv("LABSCRUB_INSTRUCTIONS", "from-env.ts")

	c := Default()
	c.InstructionsPath = "from-flag.ts"
	ApplyEnv(&c, func(flag string) bool { return flag == "instructions" })

	assert.Equal(t, "custom.json", c.ReportPath)
	assert.Equal(t, 250, c.Window)
	assert.Equal(t, "catalog", c.DBName)
	assert.Equal(t, "from-flag.ts", c.InstructionsPath)
	assert.Equal(t, "src/lib/mock-data.ts", c.RegistryPath)
}

func TestApplyEnvIgnoresBadWindow(t *testing.T) {
	t.Setenv("LABSCRUB_WINDOW", "wide")

	c := Default()
	ApplyEnv(&c, nil)

	assert.Equal(t, 4000, c.Window)
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LABSCRUB_BACKUP_SUFFIX=.orig\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LABSCRUB_BACKUP_SUFFIX") })

	LoadEnvFiles(path)

	c := Default()
	ApplyEnv(&c, nil)
	assert.Equal(t, ".orig", c.BackupSuffix)
}

func TestLoadEnvFilesMissing(t *testing.T) {
	assert.NotPanics(t, func() {
		LoadEnvFiles(filepath.Join(t.TempDir(), "absent.env"))
	})
}
