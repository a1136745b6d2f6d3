package tui

import (
	"os"
	"path/filepath"
	"testing"

	"labscrub/internal/backup"
	"labscrub/internal/config"
	"labscrub/internal/sanitizer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

const registry = `export const courses: Course[] = [
    {
        id: 'az-104',
        title: 'Azure Administrator',
        requiresAzurePortal: true,
    },
    {
        id: 'ws011wv-2025',
        title: 'Windows Server 2025',
    },
];
`

const instructions = `export const labInstructions = {
    'az-104': {
        id: 'az104-lab',
        courseId: 'az-104',
        instructions: [
            { step: 1, action: 'Open the Azure Portal' }
        ]
    },
    'ws011wv-2025': {
        id: 'ws011-lab',
        courseId: 'ws011wv-2025',
        instructions: [
            { step: 1, action: 'Sign in to the Azure Portal' }
        ]
    }
};
`

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RegistryPath = filepath.Join(dir, "mock-data.ts")
	cfg.InstructionsPath = filepath.Join(dir, "lab-instructions.ts")
	cfg.ReportPath = filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(cfg.RegistryPath, []byte(registry), 0644))
	require.NoError(t, os.WriteFile(cfg.InstructionsPath, []byte(instructions), 0644))
	return cfg
}

func TestCleanTaskFlow(t *testing.T) {
	m := NewTaskModel(CleanTask, config.Default(), sanitizer.Builtin())
	assert.True(t, m.CanLeave())

	m.Update(enter)
	assert.Equal(t, TaskProfileSelectState, m.state)
	assert.False(t, m.CanLeave())

	m.Update(down)
	assert.Equal(t, "final", m.profile().Name)

	m.Update(enter)
	assert.Equal(t, TaskConfirmState, m.state)

	m.Update(runes("d"))
	assert.True(t, m.dryRun)

	m.Update(runes("n"))
	assert.Equal(t, TaskInputState, m.state)
}

func TestTaskFormRequiresValues(t *testing.T) {
	m := NewTaskModel(RestoreTask, config.Default(), sanitizer.Builtin())
	m.inputs[0].SetValue("  ")

	m.Update(enter)
	assert.Equal(t, TaskInputState, m.state)
	assert.Nil(t, m.profile())
}

func TestVerifyDefaultsToFinalProfile(t *testing.T) {
	m := NewTaskModel(VerifyTask, config.Default(), sanitizer.Builtin())
	assert.Equal(t, "final", m.profile().Name)
}

func TestTaskCompletes(t *testing.T) {
	cfg := testConfig(t)
	m := NewTaskModel(AnalyzeTask, cfg, sanitizer.Builtin())

	_, cmd := m.Update(enter)
	require.NotNil(t, cmd)
	assert.Equal(t, TaskProgressState, m.state)

	m.Update(cmd())
	assert.Equal(t, TaskResultState, m.state)
	require.NoError(t, m.result.Err)
	assert.Contains(t, m.result.Lines, "   Courses needing cleanup: 1")
	assert.FileExists(t, cfg.ReportPath)

	m.Update(enter)
	assert.Equal(t, TaskInputState, m.state)
}

func TestRunCleanAndVerify(t *testing.T) {
	cfg := testConfig(t)
	profiles := sanitizer.Builtin()

	require.NoError(t, runTask(AnalyzeTask, cfg, nil, false).Err)

	res := runTask(VerifyTask, cfg, profiles["final"], false)
	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ws011wv-2025 still mentions the portal"}, res.Warnings)

	res = runTask(CleanTask, cfg, profiles["aggressive"], false)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Warnings)

	res = runTask(VerifyTask, cfg, profiles["final"], false)
	require.NoError(t, res.Err)
	assert.Empty(t, res.Warnings)
}

func TestRunRestore(t *testing.T) {
	cfg := testConfig(t)

	assert.Error(t, runTask(RestoreTask, cfg, nil, false).Err)

	_, _, err := backup.NewService(cfg.BackupSuffix).Create(cfg.InstructionsPath, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfg.InstructionsPath, []byte("changed"), 0644))

	require.NoError(t, runTask(RestoreTask, cfg, nil, false).Err)
	data, err := os.ReadFile(cfg.InstructionsPath)
	require.NoError(t, err)
	assert.Equal(t, instructions, string(data))
}

func TestModelNavigation(t *testing.T) {
	m, err := NewModel(config.Default())
	require.NoError(t, err)

	next, _ := m.Update(OpenTaskMsg{Kind: FlagTask})
	m = next.(Model)
	assert.Equal(t, TaskScreen, m.currentScreen)

	next, _ = m.Update(runes("q"))
	m = next.(Model)
	assert.False(t, m.quitting, "q is typed into the form")

	next, _ = m.Update(esc)
	m = next.(Model)
	assert.Equal(t, MenuScreen, m.currentScreen)

	next, _ = m.Update(runes("q"))
	assert.True(t, next.(Model).quitting)
}

func TestDiffStat(t *testing.T) {
	diff := "--- a\n+++ b\n@@ -1,2 +1,2 @@\n-old\n+new\n+more\n same\n"
	added, removed := diffStat(diff)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, removed)
}
