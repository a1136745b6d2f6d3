package pass

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labscrub/internal/backup"
	"labscrub/internal/catalog"
	"labscrub/internal/models"
	"labscrub/internal/sanitizer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registry = `export const courses: Course[] = [
    {
        id: 'az-104',
        title: 'Microsoft Azure Administrator [Cloud Slice Provided]',
        level: 'Intermediate',
    },
    {
        id: 'ws011wv-2025',
        title: 'Windows Server 2025 Administration',
        level: 'Advanced',
    },
];
`

const instructions = `export const labInstructions: Record<string, LabInstruction> = {
    'az-104': {
        id: 'az104-lab',
        courseId: 'az-104',
        prerequisites: [
            'Access to Azure Portal'
        ],
        instructions: [
            { step: 1, action: 'Open the Azure Portal' },
            { step: 2, action: 'Open Cloud Shell' }
        ]
    },
    'ws011wv-2025': {
        id: 'ws011-lab',
        courseId: 'ws011wv-2025',
        prerequisites: [
            'RDP client installed',
            'Access to Azure Portal'
        ],
        instructions: [
            { step: 1, action: 'Connect to the VM using RDP' },
            { step: 2, action: 'Open the Azure Portal and create a resource group' },
            { step: 3, action: 'Open Server Manager' }
        ]
    }
};
`

type fixture struct {
	dir          string
	registry     string
	instructions string
	report       string
	svc          *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dir := t.TempDir()
	f := fixture{
		dir:          dir,
		registry:     filepath.Join(dir, "mock-data.ts"),
		instructions: filepath.Join(dir, "lab-instructions.ts"),
		report:       filepath.Join(dir, "report.json"),
		svc:          NewService(backup.NewService(".backup")),
	}
	require.NoError(t, os.WriteFile(f.registry, []byte(registry), 0644))
	require.NoError(t, os.WriteFile(f.instructions, []byte(instructions), 0644))
	return f
}

func (f fixture) read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func (f fixture) analyze(t *testing.T) models.Report {
	t.Helper()
	res, err := Analyze(AnalyzeOptions{
		RegistryPath:     f.registry,
		InstructionsPath: f.instructions,
		ReportPath:       f.report,
	})
	require.NoError(t, err)
	return res.Report
}

func profile(t *testing.T, name string) *sanitizer.Profile {
	t.Helper()
	p, err := sanitizer.Builtin().Get(name)
	require.NoError(t, err)
	return p
}

func TestFlagThenAnalyze(t *testing.T) {
	f := newFixture(t)

	before := f.analyze(t)
	assert.Empty(t, before.Flagged)
	assert.Equal(t, []string{"az-104", "ws011wv-2025"}, before.UnflaggedWithInstructions)

	flagged, err := Flag(f.registry, "", "", false)
	require.NoError(t, err)
	assert.Equal(t, 1, flagged.Flagged)
	assert.True(t, flagged.Written)

	report := f.analyze(t)
	assert.Equal(t, []string{"az-104"}, report.Flagged)
	assert.Equal(t, []string{"ws011wv-2025"}, report.UnflaggedWithInstructions)

	saved, err := catalog.LoadReport(f.report)
	require.NoError(t, err)
	assert.Equal(t, report, saved)
}

func TestFlagDryRun(t *testing.T) {
	f := newFixture(t)

	res, err := Flag(f.registry, "", "", true)
	require.NoError(t, err)
	assert.False(t, res.Written)
	assert.Contains(t, res.Diff, "+        requiresAzurePortal: true,")
	assert.Equal(t, registry, f.read(t, f.registry))
}

func TestAnalyzeWithOverridesAndSummary(t *testing.T) {
	f := newFixture(t)
	overrides := filepath.Join(f.dir, "overrides.csv")
	summary := filepath.Join(f.dir, "summary.csv")
	require.NoError(t, os.WriteFile(overrides, []byte("course id,requires portal\naz-104,true\n"), 0644))

	res, err := Analyze(AnalyzeOptions{
		RegistryPath:     f.registry,
		InstructionsPath: f.instructions,
		ReportPath:       f.report,
		OverridesPath:    overrides,
		SummaryPath:      summary,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.OverridesUsed)
	assert.True(t, res.SummaryWritten)
	assert.Equal(t, []string{"az-104"}, res.Report.Flagged)
	assert.Contains(t, f.read(t, summary), "az-104,true,true,2\n")
	assert.Equal(t, []catalog.KeywordCount{
		{Keyword: "Azure Portal", Count: 4},
		{Keyword: "Cloud Shell", Count: 1},
		{Keyword: "Resource Group", Count: 1},
	}, res.Keywords)
}

func TestAnalyzeMissingRegistry(t *testing.T) {
	f := newFixture(t)
	_, err := Analyze(AnalyzeOptions{
		RegistryPath:     filepath.Join(f.dir, "absent.ts"),
		InstructionsPath: f.instructions,
		ReportPath:       f.report,
	})
	assert.Error(t, err)
}

func TestMarkThenFinal(t *testing.T) {
	f := newFixture(t)
	_, err := Flag(f.registry, "", "", false)
	require.NoError(t, err)
	report := f.analyze(t)

	mark, err := f.svc.Clean(CleanOptions{
		InstructionsPath: f.instructions,
		Profile:          profile(t, "mark"),
		Report:           report,
	})
	require.NoError(t, err)
	assert.True(t, mark.BackupCreated)
	assert.Equal(t, instructions, f.read(t, f.instructions+".backup"))
	assert.Contains(t, f.read(t, f.instructions), "// "+sanitizer.VMOnlyMarker)
	assert.Empty(t, mark.FlaggedTouched)

	final, err := f.svc.Clean(CleanOptions{
		InstructionsPath: f.instructions,
		Profile:          profile(t, "final"),
		Report:           report,
	})
	require.NoError(t, err)
	assert.Equal(t, f.instructions+".backup", final.SourcePath)
	assert.True(t, final.Written)
	assert.Equal(t, []string{"ws011wv-2025"}, final.Sanitize.Updated)
	assert.Equal(t, []CourseCount{{CourseID: "ws011wv-2025", Count: 0}}, final.Remaining)
	assert.Empty(t, final.FlaggedTouched)

	out := f.read(t, f.instructions)
	ws, ok := sanitizer.ExtractBlock(out, "ws011wv-2025")
	require.True(t, ok)
	assert.NotContains(t, ws.Text, "Azure Portal")
	assert.Contains(t, ws.Text, "'RDP access to the lab VM'")
	assert.NotContains(t, out, sanitizer.VMOnlyMarker, "final rebuilds from the backup")

	az, ok := sanitizer.ExtractBlock(out, "az-104")
	require.True(t, ok)
	orig, _ := sanitizer.ExtractBlock(instructions, "az-104")
	assert.Equal(t, orig.Text, az.Text)

	verify, err := Verify(f.instructions, report, profile(t, "final"))
	require.NoError(t, err)
	assert.Empty(t, verify.Dirty)
	assert.Equal(t, []CourseCount{{CourseID: "az-104", Count: 2}}, verify.Flagged)
}

func TestBackupSourceRequired(t *testing.T) {
	f := newFixture(t)
	report := f.analyze(t)

	_, err := f.svc.Clean(CleanOptions{
		InstructionsPath: f.instructions,
		Profile:          profile(t, "safe"),
		Report:           report,
	})
	assert.Error(t, err)
	assert.Equal(t, instructions, f.read(t, f.instructions))
}

func TestPreferBackupFallsBackToWorkingFile(t *testing.T) {
	f := newFixture(t)
	report := f.analyze(t)

	res, err := f.svc.Clean(CleanOptions{
		InstructionsPath: f.instructions,
		Profile:          profile(t, "aggressive"),
		Report:           report,
	})
	require.NoError(t, err)
	assert.Equal(t, f.instructions, res.SourcePath)
	for _, c := range res.Remaining {
		assert.Zero(t, c.Count, c.CourseID)
	}
}

func TestCleanDryRun(t *testing.T) {
	f := newFixture(t)
	report := f.analyze(t)

	res, err := f.svc.Clean(CleanOptions{
		InstructionsPath: f.instructions,
		Profile:          profile(t, "mark"),
		Report:           report,
		DryRun:           true,
	})
	require.NoError(t, err)

	assert.False(t, res.Written)
	assert.False(t, f.svc.Backups().Exists(f.instructions))
	assert.Equal(t, instructions, f.read(t, f.instructions))
	assert.True(t, strings.HasPrefix(res.Diff, "--- "+f.instructions))
	assert.Contains(t, res.Diff, "+        // "+sanitizer.VMOnlyMarker)
}

func TestCleanWithoutProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Clean(CleanOptions{InstructionsPath: f.instructions})
	assert.Error(t, err)
}

func TestChangedBlocks(t *testing.T) {
	after := strings.Replace(instructions, "'Open Cloud Shell'", "'Open PowerShell'", 1)

	assert.Equal(t, []string{"az-104"}, ChangedBlocks(instructions, after, []string{"az-104", "ws011wv-2025"}))
	assert.Equal(t, []string{"gone"}, ChangedBlocks("'gone': {\n}", "", []string{"gone"}))
	assert.Empty(t, ChangedBlocks(instructions, instructions, []string{"az-104"}))
}
