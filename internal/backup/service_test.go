package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCreateKeepsExistingBackup(t *testing.T) {
	target := filepath.Join(t.TempDir(), "lab-instructions.ts")
	writeFile(t, target, "original")
	s := NewService("")

	path, created, err := s.Create(target, false)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, target+".backup", path)

	writeFile(t, target, "edited")
	_, created, err = s.Create(target, false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "original", readFile(t, path))

	_, created, err = s.Create(target, true)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "edited", readFile(t, path))
}

func TestCreateMissingTarget(t *testing.T) {
	_, _, err := NewService("").Create(filepath.Join(t.TempDir(), "absent.ts"), false)
	assert.Error(t, err)
}

func TestLoadAndRestore(t *testing.T) {
	target := filepath.Join(t.TempDir(), "lab.ts")
	s := NewService(".orig")

	_, err := s.Load(target)
	assert.Error(t, err)
	assert.False(t, s.Exists(target))

	writeFile(t, target, "clean slate")
	_, _, err = s.Create(target, false)
	require.NoError(t, err)
	assert.True(t, s.Exists(target))

	writeFile(t, target, "broken edit")
	content, err := s.Load(target)
	require.NoError(t, err)
	assert.Equal(t, "clean slate", content)

	require.NoError(t, s.Restore(target))
	assert.Equal(t, "clean slate", readFile(t, target))
}

func TestRestoreRejectsEmptyBackup(t *testing.T) {
	target := filepath.Join(t.TempDir(), "lab.ts")
	writeFile(t, target, "keep me")
	writeFile(t, target+".backup", "")

	err := NewService("").Restore(target)
	assert.EqualError(t, err, "backup file is empty")
	assert.Equal(t, "keep me", readFile(t, target))
}

func TestSnapshot(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "lab-instructions.ts")
	writeFile(t, target, "content")

	s := NewService("")
	s.now = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }

	path, err := s.Snapshot(target, filepath.Join(dir, "snapshots"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "snapshots", "lab-instructions_20250304_050607.backup"), path)
	assert.Equal(t, "content", readFile(t, path))
	assert.False(t, s.Exists(target))
}
